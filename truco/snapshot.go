package truco

import "truco-lite/card"

// PlayerSnapshot is one seat as a given viewer may see it. Hand carries face
// cards only when the redaction rules allow; hidden cards appear as the
// rear placeholder so clients can still render counts.
type PlayerSnapshot struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Bot       bool        `json:"bot"`
	Team      Team        `json:"team"`
	Hand      []card.Card `json:"hand"`
	HandCount int         `json:"handCount"`
	RoundWins int         `json:"roundWins"`
	Points    int         `json:"points"`
}

// Snapshot is the full table state for one viewer.
type Snapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Owner  string `json:"owner"`
	Bet    int64  `json:"bet"`
	Status Status `json:"status"`

	Turn        string       `json:"turn,omitempty"`
	Dealer      string       `json:"dealer,omitempty"`
	TurnUp      card.Card    `json:"turnUp"`
	Stake       int          `json:"stake"`
	TrickNumber int          `json:"trickNumber"`
	Trick       []PlayedCard `json:"trick"`

	SeatOrder []string         `json:"seatOrder"`
	Players   []PlayerSnapshot `json:"players"`

	TeamScore    map[string]int `json:"teamScore"`
	TrickWins    map[string]int `json:"trickWins"`
	TrickHistory []Team         `json:"trickHistory"`

	PendingRaise  *RaiseRequest `json:"pendingRaise,omitempty"`
	RaiseDisabled bool          `json:"raiseDisabled"`
	CanRaiseTeam  Team          `json:"canRaiseTeam,omitempty"`

	Special    *SpecialHand `json:"special,omitempty"`
	LastResult *RoundResult `json:"lastResult,omitempty"`

	Version uint64 `json:"version"`
}

// SnapshotFor renders the table for viewerID. Redaction: normally a viewer
// sees only their own hand; during a hand-of-eleven decision the deciding
// team previews all of its hands; during an iron hand every hand is hidden,
// the viewer's own included.
func (g *Game) SnapshotFor(viewerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotForLocked(viewerID)
}

func (g *Game) snapshotForLocked(viewerID string) Snapshot {
	s := Snapshot{
		ID:            g.ID,
		Name:          g.Name,
		Owner:         g.Owner,
		Bet:           g.Bet,
		Status:        g.status,
		Turn:          g.turn,
		Dealer:        g.dealer,
		TurnUp:        g.turnUp,
		Stake:         g.stake,
		TrickNumber:   g.trickNumber,
		Trick:         append([]PlayedCard(nil), g.trick...),
		SeatOrder:     append([]string(nil), g.seatOrder...),
		TrickHistory:  append([]Team(nil), g.trickHistory...),
		RaiseDisabled: g.raiseDisabled,
		CanRaiseTeam:  g.canRaiseTeam,
		LastResult:    g.lastResult,
		Version:       g.version,
		TeamScore: map[string]int{
			TeamA.String(): g.score[TeamA],
			TeamB.String(): g.score[TeamB],
		},
		TrickWins: map[string]int{
			TeamA.String(): g.trickWins[TeamA],
			TeamB.String(): g.trickWins[TeamB],
		},
	}
	if g.pendingRaise != nil {
		pr := *g.pendingRaise
		s.PendingRaise = &pr
	}
	// Copied, not aliased: the engine mutates the live struct under the lock
	// while snapshots are encoded outside it.
	if g.special != nil {
		sp := *g.special
		s.Special = &sp
	}
	for _, id := range g.seatOrder {
		p := g.players[id]
		ps := PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Bot:       p.Bot,
			Team:      g.teams[id],
			HandCount: p.hand.Count(),
			RoundWins: p.RoundWins(),
			Points:    g.score[g.teams[id]],
		}
		if g.handVisibleLocked(viewerID, id) {
			ps.Hand = append([]card.Card(nil), p.Hand()...)
		} else {
			for i := 0; i < p.hand.Count(); i++ {
				ps.Hand = append(ps.Hand, card.CardRear)
			}
		}
		s.Players = append(s.Players, ps)
	}
	return s
}

// handVisibleLocked applies the redaction rules for one seat's hand.
func (g *Game) handVisibleLocked(viewerID, seatID string) bool {
	if g.special != nil && g.special.Kind == SpecialHandIron &&
		g.status != StatusWaiting && g.status != StatusFinished {
		return false
	}
	if g.status == StatusHandElevenDecision && g.special != nil {
		deciding := g.special.DecidingTeam
		if g.teams[viewerID] == deciding && g.teams[seatID] == deciding {
			return true
		}
	}
	return viewerID == seatID
}
