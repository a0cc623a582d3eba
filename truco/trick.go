package truco

import (
	"fmt"

	"truco-lite/card"
)

const (
	tricksPerRound = 3
	cardsPerHand   = 3
)

// startRoundLocked shuffles, deals three cards to every seat, turns up the
// trump indicator and opens the first trick. It also detects the special
// hand-of-eleven cases before any card is played.
func (g *Game) startRoundLocked() {
	g.rebuildTeamsLocked()
	if g.matchPlayers == nil {
		g.matchPlayers = append([]string(nil), g.seatOrder...)
	}

	g.deck.Init(card.TrucoCards)
	g.rng.Shuffle(g.deck.Count(), func(i, j int) { g.deck[i], g.deck[j] = g.deck[j], g.deck[i] })

	for _, id := range g.seatOrder {
		p := g.players[id]
		p.resetForNewRound()
		dealt, _ := g.deck.PopCards(cardsPerHand)
		p.hand.Init(dealt)
	}
	g.turnUp = g.deck.PopCard()

	g.advanceDealerLocked()
	g.trick = nil
	g.trickNumber = 1
	g.trickWins = map[Team]int{TeamA: 0, TeamB: 0}
	g.trickHistory = nil
	g.stake = 1
	g.pendingRaise = nil
	g.raiseDisabled = false
	g.canRaiseTeam = TeamNone
	g.lastRaiseTeam = TeamNone
	g.special = nil
	g.turn = g.nextAliveSeatLocked(g.dealer)
	g.status = StatusPlaying

	g.evaluateSpecialHandLocked()

	g.logf("round start dealer=%s turnUp=%s stake=%d status=%s",
		g.dealer, g.turnUp, g.stake, StatusDictionary[g.status])
	g.scheduleBotLocked()
}

// rebuildTeamsLocked assigns teams by seat parity: even seats form team A,
// odd seats team B.
func (g *Game) rebuildTeamsLocked() {
	g.teams = make(map[string]Team, len(g.seatOrder))
	for i, id := range g.seatOrder {
		g.teams[id] = teamForSeat(i)
	}
}

// advanceDealerLocked rotates the dealer button one seat. A fresh match
// seats the button at the last seat so the first seat leads the opening
// round.
func (g *Game) advanceDealerLocked() {
	if g.dealer == "" {
		g.dealer = g.seatOrder[len(g.seatOrder)-1]
		return
	}
	g.dealer = g.nextAliveSeatLocked(g.dealer)
}

// nextAliveSeatLocked is the plain seat-order successor, ignoring trick
// participation. Used for dealer rotation and round leads.
func (g *Game) nextAliveSeatLocked(fromPlayer string) string {
	for i, id := range g.seatOrder {
		if id == fromPlayer {
			return g.seatOrder[(i+1)%len(g.seatOrder)]
		}
	}
	if len(g.seatOrder) > 0 {
		return g.seatOrder[0]
	}
	return ""
}

// PlayCard plays the card at the given hand index for playerID. Once the
// last seat has played, the trick is frozen for the reveal delay and then
// resolved by a deferred task.
func (g *Game) PlayCard(playerID string, handIndex int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playCardLocked(playerID, handIndex)
}

func (g *Game) playCardLocked(playerID string, handIndex int) error {
	if g.status != StatusPlaying {
		return errIllegalState("cannot play a card now")
	}
	p, ok := g.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if g.turn != playerID {
		return errIllegalState("not your turn")
	}
	c, ok := p.takeCard(handIndex)
	if !ok {
		return ErrIllegalIndex
	}

	g.trick = append(g.trick, PlayedCard{PlayerID: playerID, Name: p.Name, Card: c})
	g.logf("play %s by %s (trick %d)", c, playerID, g.trickNumber)

	next := g.nextSeatLocked(playerID)
	if next != "" {
		g.turn = next
		g.notifyLocked()
		g.scheduleBotLocked()
		return nil
	}

	// Trick complete: hold the table so everyone sees the final card, then
	// resolve off the timer.
	g.status = StatusResolvingTrick
	g.turn = ""
	g.after(g.cfg.TrickRevealDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.status != StatusResolvingTrick {
			return
		}
		g.resolveTrickLocked()
	})
	g.notifyLocked()
	return nil
}

// resolveTrickLocked decides the trick, records the win (or draw) and either
// opens the next trick or finishes the round. A panic while resolving never
// wedges the table: recovery forces a playable state and stores the
// diagnostic in the round result.
func (g *Game) resolveTrickLocked() {
	defer func() {
		if r := recover(); r != nil {
			g.logf("resolve panic: %v", r)
			g.status = StatusPlaying
			if g.turn == "" && len(g.seatOrder) > 0 {
				g.turn = g.seatOrder[0]
			}
			g.lastResult = &RoundResult{ResolveError: fmt.Sprintf("%v", r)}
			g.notifyLocked()
		}
	}()

	if len(g.trick) == 0 {
		panic("resolve with empty trick")
	}

	best := -2
	var winners []PlayedCard
	for _, pc := range g.trick {
		s := card.Strength(pc.Card, g.turnUp)
		if s > best {
			best = s
			winners = winners[:0]
			winners = append(winners, pc)
		} else if s == best {
			winners = append(winners, pc)
		}
	}

	starter := g.trick[0].PlayerID
	if len(winners) == 1 {
		w := winners[0]
		team := g.teams[w.PlayerID]
		g.trickWins[team]++
		g.trickHistory = append(g.trickHistory, team)
		g.players[w.PlayerID].roundWins++
		g.turn = w.PlayerID
		g.logf("trick %d won by %s (%s)", g.trickNumber, w.PlayerID, team)
	} else {
		g.trickHistory = append(g.trickHistory, TeamDraw)
		g.turn = starter
		g.logf("trick %d drawn", g.trickNumber)
	}

	if team, reason, done := g.roundOutcomeLocked(); done {
		g.finishRoundLocked(team, reason, g.stake)
		return
	}

	g.trick = nil
	g.trickNumber++
	g.status = StatusPlaying
	g.notifyLocked()
	g.scheduleBotLocked()
}

// roundOutcomeLocked applies the round-end priority to the trick history.
// Ordering matters: two wins beats everything, the two-trick draw shortcuts
// come next, a fully drawn round awards nothing, and otherwise a completed
// third trick goes to the first team that won any trick.
func (g *Game) roundOutcomeLocked() (Team, string, bool) {
	for _, t := range []Team{TeamA, TeamB} {
		if g.trickWins[t] >= 2 {
			return t, "two tricks", true
		}
	}
	h := g.trickHistory
	if len(h) == 2 {
		if h[0] == TeamDraw && h[1] != TeamDraw {
			return h[1], "draw then win", true
		}
		if h[1] == TeamDraw && h[0] != TeamDraw {
			return h[0], "win then draw", true
		}
	}
	if len(h) == tricksPerRound {
		for _, t := range h {
			if t != TeamDraw {
				return t, "first trick breaks tie", true
			}
		}
		return TeamDraw, "all tricks drawn", true
	}
	return TeamNone, "", false
}

// finishRoundLocked credits the round stake, publishes the result, and after
// the round-end delay either deals the next round or ends the match.
// A fully drawn round passes TeamDraw: the dealer button still moves but no
// team scores.
func (g *Game) finishRoundLocked(winner Team, reason string, points int) {
	if winner != TeamDraw && winner != TeamNone {
		g.score[winner] += points
	}

	res := &RoundResult{
		WinnerTeam:   winner,
		Reason:       reason,
		Points:       points,
		TrickHistory: append([]Team(nil), g.trickHistory...),
	}
	for _, pc := range g.trick {
		res.Cards = append(res.Cards, pc)
	}
	if seat := g.firstSeatOfTeamLocked(winner); seat != "" {
		res.Winner = seat
	}
	g.lastResult = res
	g.pendingRaise = nil
	g.trick = nil

	if g.matchOverLocked() {
		g.finishMatchLocked()
		return
	}

	g.status = StatusRoundEnd
	g.turn = ""
	g.logf("round over winner=%s reason=%q points=%d score A=%d B=%d",
		winner, reason, points, g.score[TeamA], g.score[TeamB])
	g.after(g.cfg.RoundEndDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.status != StatusRoundEnd {
			return
		}
		g.startRoundLocked()
		g.notifyLocked()
	})
	g.notifyLocked()
}

func (g *Game) matchOverLocked() bool {
	return g.score[TeamA] >= g.cfg.MatchTarget || g.score[TeamB] >= g.cfg.MatchTarget
}

// finishMatchLocked settles the pot exactly once and schedules the table's
// automatic restart: after the delay the match state resets, a fresh buy-in
// is collected and the next match deals itself. A seat that can no longer
// cover the bet cancels the restart and the table stays in waiting.
func (g *Game) finishMatchLocked() {
	g.status = StatusFinished
	g.turn = ""
	winner := TeamA
	if g.score[TeamB] > g.score[TeamA] {
		winner = TeamB
	}
	g.logf("match over winner=%s score A=%d B=%d", winner, g.score[TeamA], g.score[TeamB])
	g.payoutLocked(winner)

	if !g.restartScheduled {
		g.restartScheduled = true
		g.after(g.cfg.RestartDelay, func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.restartScheduled = false
			if g.status != StatusFinished {
				return
			}
			g.restartMatchLocked()
			g.notifyLocked()
		})
	}
	g.notifyLocked()
}

// restartMatchLocked is the deferred follow-up to a finished match.
func (g *Game) restartMatchLocked() {
	g.resetMatchLocked()
	if len(g.players) < g.cfg.MinPlayers {
		return
	}
	if err := g.collectBuyInLocked(); err != nil {
		g.logf("auto-restart buy-in failed: %v", err)
		g.matchPlayers = nil
		g.lastResult = &RoundResult{Reason: "restart cancelled: " + err.Error()}
		return
	}
	g.startRoundLocked()
}
