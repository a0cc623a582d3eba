package bot

import "math/rand"

const trumpFloor = 100

// RuleBrain is the default opponent: deterministic card selection with a
// small randomized appetite for raising. The engine serializes all calls,
// so the rng needs no extra locking.
type RuleBrain struct {
	rng *rand.Rand

	// Raise appetite, tunable for tests.
	RaiseWithTrumpProb  float64
	RaiseStrongHandProb float64
	StrongHandAvg       int
}

func NewRuleBrain(seed int64) *RuleBrain {
	return &RuleBrain{
		rng:                 rand.New(rand.NewSource(seed)),
		RaiseWithTrumpProb:  0.85,
		RaiseStrongHandProb: 0.45,
		StrongHandAvg:       50,
	}
}

func (b *RuleBrain) Name() string { return "Bot" }

func (b *RuleBrain) Decide(view GameView) Decision {
	if len(view.HandStrengths) == 0 {
		return Decision{CardIndex: 0}
	}
	if view.CanRaise && view.Stake == 1 && b.wantsRaise(view) {
		return Decision{Raise: true}
	}
	if view.LeadStrength < 0 {
		return Decision{CardIndex: b.leadIndex(view.HandStrengths)}
	}
	return Decision{CardIndex: b.respondIndex(view.HandStrengths, view.LeadStrength)}
}

// RespondRaise always accepts. The brain never folds a round it bought into.
func (b *RuleBrain) RespondRaise(view GameView) bool { return true }

// DecideHandEleven plays when the team holds real material: any trump, two
// high cards, a single near-top card, or a pair of middling cards with some
// support.
func (b *RuleBrain) DecideHandEleven(teamStrengths []int) bool {
	max, high, mid := 0, 0, 0
	for _, s := range teamStrengths {
		if s > max {
			max = s
		}
		if s >= 7 {
			high++
		}
		if s >= 5 {
			mid++
		}
	}
	switch {
	case max >= trumpFloor:
		return true
	case high >= 2:
		return true
	case max >= 8:
		return true
	case mid >= 2 && max >= 6:
		return true
	}
	return false
}

func (b *RuleBrain) wantsRaise(view GameView) bool {
	trumps, sum := 0, 0
	for _, s := range view.HandStrengths {
		if s >= trumpFloor {
			trumps++
		}
		sum += s
	}
	if trumps >= 1 {
		return b.rng.Float64() < b.RaiseWithTrumpProb
	}
	if sum/len(view.HandStrengths) >= b.StrongHandAvg {
		return b.rng.Float64() < b.RaiseStrongHandProb
	}
	return false
}

// leadIndex opens a trick. Holding two or more trumps the brain spends the
// weakest one; otherwise it leads its middle card to feel out the trick.
func (b *RuleBrain) leadIndex(strengths []int) int {
	trumps := 0
	weakestTrump := -1
	for i, s := range strengths {
		if s >= trumpFloor {
			trumps++
			if weakestTrump < 0 || s < strengths[weakestTrump] {
				weakestTrump = i
			}
		}
	}
	if trumps >= 2 {
		return weakestTrump
	}
	return middleIndex(strengths)
}

// respondIndex beats the trick's lead card as cheaply as possible, or
// sacrifices the weakest card when nothing beats it.
func (b *RuleBrain) respondIndex(strengths []int, lead int) int {
	winner := -1
	for i, s := range strengths {
		if s > lead && (winner < 0 || s < strengths[winner]) {
			winner = i
		}
	}
	if winner >= 0 {
		return winner
	}
	weakest := 0
	for i, s := range strengths {
		if s < strengths[weakest] {
			weakest = i
		}
	}
	return weakest
}

func middleIndex(strengths []int) int {
	order := make([]int, len(strengths))
	for i := range order {
		order[i] = i
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && strengths[order[j]] < strengths[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order[len(order)/2]
}
