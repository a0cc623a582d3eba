package truco

import (
	"github.com/google/uuid"
)

// Raise proposes lifting the round stake one rung up the ladder. Two entry
// points share this code: a fresh raise while playing, and a counter-raise
// while a proposal is already on the table. A counter flips the pending
// request back at the original proposer at the next rung.
func (g *Game) Raise(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.raiseLocked(playerID)
}

func (g *Game) raiseLocked(playerID string) error {
	p, ok := g.players[playerID]
	if !ok {
		return ErrUnknownPlayer
	}
	if g.raiseDisabled {
		return errIllegalState("escalation disabled this round")
	}

	switch g.status {
	case StatusPlaying:
		if g.turn != playerID {
			return ErrNotAuthorized
		}
		if g.stake >= MaxStake {
			return errIllegalState("stake already at maximum")
		}
		team := g.teams[playerID]
		if g.canRaiseTeam != TeamNone && g.canRaiseTeam != team {
			return errIllegalState("team must wait for the opponents to raise")
		}
		target := g.nextOpponentSeatLocked(playerID)
		if target == "" {
			return errIllegalState("no opponent to raise against")
		}
		g.pendingRaise = &RaiseRequest{
			Proposer:      playerID,
			Target:        target,
			ProposedValue: nextStakeValue(g.stake),
			RequestID:     uuid.NewString(),
			ProposerTeam:  team,
		}
		g.status = StatusAwaitingRaise
		g.logf("raise to %d by %s (%s), target %s", g.pendingRaise.ProposedValue, p.Name, team, target)
		g.scheduleBotResponseLocked()
		g.notifyLocked()
		return nil

	case StatusAwaitingRaise:
		pr := g.pendingRaise
		if pr == nil {
			return errIllegalState("no raise pending")
		}
		if g.teams[playerID] != g.teams[pr.Target] {
			return ErrNotAuthorized
		}
		if pr.ProposedValue >= MaxStake {
			return errIllegalState("cannot raise past the maximum")
		}
		g.pendingRaise = &RaiseRequest{
			Proposer:      playerID,
			Target:        pr.Proposer,
			ProposedValue: nextStakeValue(pr.ProposedValue),
			RequestID:     uuid.NewString(),
			ProposerTeam:  g.teams[playerID],
		}
		g.logf("counter-raise to %d by %s, back at %s", g.pendingRaise.ProposedValue, p.Name, pr.Proposer)
		g.scheduleBotResponseLocked()
		g.notifyLocked()
		return nil
	}
	return errIllegalState("cannot raise now")
}

// AcceptRaise locks in the proposed stake. requestID guards against stale
// responses racing a counter-raise: a response carrying an outdated ID is
// dropped without error. An empty requestID always means the current
// proposal.
func (g *Game) AcceptRaise(playerID, requestID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.acceptRaiseLocked(playerID, requestID)
}

func (g *Game) acceptRaiseLocked(playerID, requestID string) error {
	pr, err := g.raiseResponderCheckLocked(playerID, requestID)
	if err != nil || pr == nil {
		return err
	}

	g.stake = pr.ProposedValue
	g.lastRaiseTeam = pr.ProposerTeam
	g.canRaiseTeam = pr.ProposerTeam.Opponent()
	g.pendingRaise = nil
	g.status = StatusPlaying
	g.logf("raise to %d accepted by %s", g.stake, playerID)
	g.notifyLocked()
	g.scheduleBotLocked()
	return nil
}

// DeclineRaise concedes the round to the proposer's team at the stake that
// was in force before the proposal.
func (g *Game) DeclineRaise(playerID, requestID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.declineRaiseLocked(playerID, requestID)
}

func (g *Game) declineRaiseLocked(playerID, requestID string) error {
	pr, err := g.raiseResponderCheckLocked(playerID, requestID)
	if err != nil || pr == nil {
		return err
	}
	g.logf("raise to %d declined by %s", pr.ProposedValue, playerID)
	g.finishRoundLocked(pr.ProposerTeam, "raise declined", g.stake)
	return nil
}

// raiseResponderCheckLocked validates a raise response. It returns
// (nil, nil) for a stale requestID so callers treat the response as a
// harmless no-op.
func (g *Game) raiseResponderCheckLocked(playerID, requestID string) (*RaiseRequest, error) {
	if _, ok := g.players[playerID]; !ok {
		return nil, ErrUnknownPlayer
	}
	if g.status != StatusAwaitingRaise || g.pendingRaise == nil {
		return nil, errIllegalState("no raise pending")
	}
	pr := g.pendingRaise
	if requestID != "" && requestID != pr.RequestID {
		return nil, nil
	}
	if g.teams[playerID] != g.teams[pr.Target] {
		return nil, ErrNotAuthorized
	}
	return pr, nil
}

// nextOpponentSeatLocked is the nearest seat after playerID held by the
// opposing team.
func (g *Game) nextOpponentSeatLocked(playerID string) string {
	start := -1
	for i, id := range g.seatOrder {
		if id == playerID {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}
	team := g.teams[playerID]
	for i := 1; i <= len(g.seatOrder); i++ {
		cand := g.seatOrder[(start+i)%len(g.seatOrder)]
		if g.teams[cand] != team {
			return cand
		}
	}
	return ""
}

// SubmitAction dispatches a named table action on behalf of playerID.
// requestID is only meaningful for raise responses.
func (g *Game) SubmitAction(playerID string, action Action, requestID string) error {
	switch action {
	case ActionRaise:
		return g.Raise(playerID)
	case ActionAccept:
		return g.AcceptRaise(playerID, requestID)
	case ActionDecline:
		return g.DeclineRaise(playerID, requestID)
	case ActionHandElevenPlay:
		return g.HandElevenDecide(playerID, DecisionPlay)
	case ActionHandElevenRun:
		return g.HandElevenDecide(playerID, DecisionRun)
	}
	return ErrUnknownAction
}
