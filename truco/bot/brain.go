// Package bot holds the scripted opponent. Brains see the table only
// through GameView, a bundle of precomputed card strengths, so they stay
// decoupled from the engine and easy to test in isolation.
package bot

// GameView is what a brain knows when it must act. HandStrengths is indexed
// like the bot's hand; trump cards sit at 100 or above. LeadStrength is the
// strength of the card that opened the current trick, or -1 when the bot
// leads.
type GameView struct {
	HandStrengths []int
	LeadStrength  int
	Stake         int
	CanRaise      bool
}

// Decision is a brain's move for one turn. When Raise is set the engine
// proposes an escalation instead of playing; the card decision is re-made
// once the raise settles.
type Decision struct {
	Raise     bool
	CardIndex int
}

// Brain decides the scripted opponent's moves.
type Brain interface {
	Name() string
	Decide(view GameView) Decision
	// RespondRaise reports whether a pending raise should be accepted.
	RespondRaise(view GameView) bool
	// DecideHandEleven reports whether to play a hand of eleven for the
	// elevated stake, given the deciding team's combined card strengths.
	DecideHandEleven(teamStrengths []int) bool
}
