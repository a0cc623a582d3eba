package truco

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"truco-lite/card"
	"truco-lite/truco/bot"
)

// Game is one truco table: a single match of best-of-three-trick rounds,
// first team to the match target. All state is guarded by mu; deferred work
// (trick reveal, round restart, bot thinking) re-acquires mu and re-validates
// the state it expects before mutating.
type Game struct {
	ID    string
	Name  string
	Owner string
	Bet   int64

	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	players   map[string]*Player
	seatOrder []string
	teams     map[string]Team

	status      Status
	deck        card.CardList
	turnUp      card.Card
	trick       []PlayedCard
	trickNumber int
	turn        string
	dealer      string

	stake         int
	pendingRaise  *RaiseRequest
	raiseDisabled bool
	canRaiseTeam  Team // TeamNone = either team may raise next
	lastRaiseTeam Team

	special *SpecialHand

	trickWins    map[Team]int
	trickHistory []Team
	score        map[Team]int

	lastResult *RoundResult

	// economy bookkeeping
	ledger       Ledger
	buyInDone    bool
	paidOut      bool
	matchPlayers []string

	// scripted opponent
	botID   string
	brain   bot.Brain
	botBusy bool

	restartScheduled bool

	// change notification for the push layer
	version  uint64
	onChange func()
}

// NewGame creates an empty table in the waiting state.
func NewGame(id, name string, bet int64, ownerID string, cfg Config, ledger Ledger) (*Game, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if ledger == nil {
		ledger = NopLedger{}
	}
	g := &Game{
		ID:        id,
		Name:      name,
		Owner:     ownerID,
		Bet:       bet,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		players:   make(map[string]*Player, cfg.MaxPlayers),
		teams:     make(map[string]Team, cfg.MaxPlayers),
		status:    StatusWaiting,
		stake:     1,
		trickWins: map[Team]int{TeamA: 0, TeamB: 0},
		score:     map[Team]int{TeamA: 0, TeamB: 0},
		ledger:    ledger,
	}
	return g, nil
}

// SetChangeListener registers a callback fired after every committed state
// change. The callback runs on its own goroutine and must not call back into
// the game synchronously while holding external locks.
func (g *Game) SetChangeListener(fn func()) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

func (g *Game) notifyLocked() {
	g.version++
	if g.onChange != nil {
		go g.onChange()
	}
}

// after schedules fn as an independent deferred task. fn must re-acquire the
// lock and re-validate table state before mutating anything.
func (g *Game) after(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// Join seats a player. Joining a finished table resets it for a new match
// with the same seating.
func (g *Game) Join(playerID, displayName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == StatusFinished {
		g.resetMatchLocked()
	}
	if _, ok := g.players[playerID]; ok {
		return nil
	}
	if g.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return ErrTableFull
	}
	g.players[playerID] = &Player{ID: playerID, Name: displayName}
	g.seatOrder = append(g.seatOrder, playerID)
	g.notifyLocked()
	return nil
}

// AddBot seats the scripted opponent in the last seat, replacing any
// previous bot seat.
func (g *Game) AddBot(brain bot.Brain) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == StatusFinished {
		g.resetMatchLocked()
	}
	if g.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if g.botID != "" {
		delete(g.players, g.botID)
		g.seatOrder = removeSeat(g.seatOrder, g.botID)
		g.botID = ""
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return ErrTableFull
	}
	if brain == nil {
		brain = bot.NewRuleBrain(g.rng.Int63())
	}
	botID := "bot_" + g.ID
	g.players[botID] = &Player{ID: botID, Name: brain.Name(), Bot: true}
	g.seatOrder = append(g.seatOrder, botID)
	g.botID = botID
	g.brain = brain
	g.notifyLocked()
	return nil
}

// Leave removes a seat. If it held the turn, the turn falls to the first
// remaining seat. Returns true when the table is empty afterwards.
func (g *Game) Leave(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[playerID]; !ok {
		return len(g.seatOrder) == 0
	}
	delete(g.players, playerID)
	g.seatOrder = removeSeat(g.seatOrder, playerID)
	if playerID == g.botID {
		g.botID = ""
		g.brain = nil
	}
	if g.turn == playerID {
		g.turn = ""
		if len(g.seatOrder) > 0 {
			g.turn = g.seatOrder[0]
		}
	}
	g.notifyLocked()
	return len(g.seatOrder) == 0
}

// StartMatch collects the buy-in from every human seat (all-or-nothing) and
// deals the first round. Only the table owner may start.
func (g *Game) StartMatch(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if playerID != g.Owner {
		return ErrNotAuthorized
	}
	if g.status != StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(g.players) < g.cfg.MinPlayers {
		return errIllegalState("not enough players")
	}

	g.score = map[Team]int{TeamA: 0, TeamB: 0}
	if err := g.collectBuyInLocked(); err != nil {
		return err
	}
	g.startRoundLocked()
	g.notifyLocked()
	return nil
}

// resetMatchLocked keeps the table and seating but clears all match state,
// allowing a fresh buy-in and a new first round.
func (g *Game) resetMatchLocked() {
	g.status = StatusWaiting
	g.deck = nil
	g.turnUp = card.CardInvalid
	g.trick = nil
	g.trickNumber = 1
	g.turn = ""
	g.stake = 1
	g.pendingRaise = nil
	g.raiseDisabled = false
	g.canRaiseTeam = TeamNone
	g.lastRaiseTeam = TeamNone
	g.special = nil
	g.trickWins = map[Team]int{TeamA: 0, TeamB: 0}
	g.trickHistory = nil
	g.score = map[Team]int{TeamA: 0, TeamB: 0}
	g.lastResult = nil
	g.buyInDone = false
	g.paidOut = false
	g.matchPlayers = nil
	g.botBusy = false
	for _, p := range g.players {
		p.resetForNewRound()
	}
}

// nextSeatLocked scans seat order starting after fromPlayer, skipping seats
// that already played in the current trick. Returns "" when the trick is
// complete. Iteration is exactly seat order, wrapping once.
func (g *Game) nextSeatLocked(fromPlayer string) string {
	start := -1
	for i, id := range g.seatOrder {
		if id == fromPlayer {
			start = i
			break
		}
	}
	if start < 0 || len(g.seatOrder) == 0 {
		return ""
	}
	played := make(map[string]bool, len(g.trick))
	for _, pc := range g.trick {
		played[pc.PlayerID] = true
	}
	for i := 1; i < len(g.seatOrder); i++ {
		cand := g.seatOrder[(start+i)%len(g.seatOrder)]
		if !played[cand] {
			return cand
		}
	}
	return ""
}

// firstSeatOfTeamLocked returns the first seat of a team in seat order.
func (g *Game) firstSeatOfTeamLocked(team Team) string {
	for _, id := range g.seatOrder {
		if g.teams[id] == team {
			return id
		}
	}
	return ""
}

func removeSeat(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func (g *Game) logf(format string, args ...any) {
	log.Printf("[Game %s] "+format, append([]any{g.ID}, args...)...)
}
