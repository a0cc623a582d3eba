package card

// rankOrder is the fixed total order over the 10 truco ranks, weakest first.
var rankOrder = []byte{4, 5, 6, 7, 12, 11, 13, 1, 2, 3}

// rankIndex maps a rank code to its position in rankOrder.
var rankIndex = func() map[byte]int {
	m := make(map[byte]int, len(rankOrder))
	for i, r := range rankOrder {
		m[r] = i
	}
	return m
}()

// suitPower breaks ties between trumps: ♦ < ♠ < ♥ < ♣.
func suitPower(s Suit) int {
	switch s {
	case Diamond:
		return 0
	case Spade:
		return 1
	case Heart:
		return 2
	case Club:
		return 3
	}
	return 0
}

// TrumpRank returns the rank code one step above the turned-up card's rank in
// rankOrder, wrapping from 3 back to 4. An invalid turn-up defaults to rank 4,
// making 5 the trump.
func TrumpRank(turnUp Card) byte {
	idx, ok := rankIndex[turnUp.Rank()]
	if !ok {
		idx = 0
	}
	return rankOrder[(idx+1)%len(rankOrder)]
}

// Strength returns the comparison metric for a card given the turned-up card.
// Trumps score 100 plus the suit power; ordinary cards score their rank-order
// position. An invalid or face-down card scores -1.
func Strength(c, turnUp Card) int {
	if c == CardInvalid || c == CardRear {
		return -1
	}
	if c.Rank() == TrumpRank(turnUp) {
		return 100 + suitPower(c.Suit())
	}
	idx, ok := rankIndex[c.Rank()]
	if !ok {
		return -1
	}
	return idx
}

// IsTrump reports whether c holds the trump rank for the given turn-up.
func IsTrump(c, turnUp Card) bool {
	return c != CardInvalid && c != CardRear && c.Rank() == TrumpRank(turnUp)
}
