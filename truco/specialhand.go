package truco

import "truco-lite/card"

// handElevenStake is the fixed round value whenever a team sits one point
// short of the match target.
const handElevenStake = 3

// evaluateSpecialHandLocked runs right after the deal. Both teams one point
// short is the iron hand: everyone plays blind for three points. One team
// short is the hand of eleven: that team previews its cards and chooses to
// play for three or forfeit one.
func (g *Game) evaluateSpecialHandLocked() {
	threshold := g.cfg.MatchTarget - 1
	aAt := g.score[TeamA] == threshold
	bAt := g.score[TeamB] == threshold
	if !aAt && !bAt {
		return
	}

	g.stake = handElevenStake
	g.raiseDisabled = true

	if aAt && bAt {
		g.special = &SpecialHand{Kind: SpecialHandIron}
		g.logf("iron hand: both teams at %d", threshold)
		return
	}

	deciding := TeamA
	if bAt {
		deciding = TeamB
	}
	g.special = &SpecialHand{Kind: SpecialHandNormal, DecidingTeam: deciding}
	g.status = StatusHandElevenDecision
	g.logf("hand of eleven: team %s decides", deciding)
	g.scheduleHandElevenAutoLocked()
}

// HandElevenDecide is a deciding-team member's choice. Play keeps the round
// at the elevated stake; Run forfeits it to the opponents for a single point.
func (g *Game) HandElevenDecide(playerID string, decision SpecialHandDecision) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handElevenDecideLocked(playerID, decision)
}

func (g *Game) handElevenDecideLocked(playerID string, decision SpecialHandDecision) error {
	if _, ok := g.players[playerID]; !ok {
		return ErrUnknownPlayer
	}
	if g.status != StatusHandElevenDecision || g.special == nil || g.special.Kind != SpecialHandNormal {
		return errIllegalState("no hand of eleven to decide")
	}
	if g.teams[playerID] != g.special.DecidingTeam {
		return ErrNotAuthorized
	}

	switch decision {
	case DecisionPlay:
		g.special.Decision = DecisionPlay
		g.status = StatusPlaying
		g.logf("hand of eleven: team %s plays for %d", g.special.DecidingTeam, g.stake)
		g.notifyLocked()
		g.scheduleBotLocked()
		return nil
	case DecisionRun:
		g.special.Decision = DecisionRun
		g.stake = 1
		g.logf("hand of eleven: team %s runs", g.special.DecidingTeam)
		g.finishRoundLocked(g.special.DecidingTeam.Opponent(), "hand of eleven declined", 1)
		return nil
	}
	return ErrUnknownAction
}

// scheduleHandElevenAutoLocked lets a fully scripted deciding team choose on
// its own after a short pause. The callback re-validates: a human decision
// arriving first wins.
func (g *Game) scheduleHandElevenAutoLocked() {
	if g.brain == nil {
		return
	}
	deciding := g.special.DecidingTeam
	allBots := true
	for _, id := range g.seatOrder {
		if g.teams[id] == deciding && !g.players[id].Bot {
			allBots = false
			break
		}
	}
	if !allBots {
		return
	}

	g.after(g.cfg.HandElevenDelay, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.status != StatusHandElevenDecision || g.special == nil ||
			g.special.Kind != SpecialHandNormal || g.special.DecidingTeam != deciding {
			return
		}
		strengths := g.teamHandStrengthsLocked(deciding)
		decision := DecisionRun
		if g.brain.DecideHandEleven(strengths) {
			decision = DecisionPlay
		}
		seat := g.firstSeatOfTeamLocked(deciding)
		if err := g.handElevenDecideLocked(seat, decision); err != nil {
			g.logf("auto hand-eleven decision failed: %v", err)
		}
	})
}

func (g *Game) teamHandStrengthsLocked(team Team) []int {
	var out []int
	for _, id := range g.seatOrder {
		if g.teams[id] != team {
			continue
		}
		for _, c := range g.players[id].hand {
			out = append(out, card.Strength(c, g.turnUp))
		}
	}
	return out
}
