package card

import "testing"

func TestCardListDealCycle(t *testing.T) {
	var deck CardList
	deck.Init(TrucoCards)
	if deck.Count() != len(TrucoCards) {
		t.Fatalf("deck size = %d, want %d", deck.Count(), len(TrucoCards))
	}

	hand, ok := deck.PopCards(3)
	if !ok || len(hand) != 3 {
		t.Fatalf("PopCards(3) = %v, %v", hand, ok)
	}
	if deck.Count() != len(TrucoCards)-3 {
		t.Fatalf("deck after deal = %d, want %d", deck.Count(), len(TrucoCards)-3)
	}
	// Init copied the source: the shared deck must be untouched.
	if len(TrucoCards) != 40 {
		t.Fatalf("TrucoCards shrank to %d", len(TrucoCards))
	}

	if c := deck.PopCard(); c == CardInvalid {
		t.Fatalf("PopCard on a live deck returned the invalid card")
	}

	if _, ok := deck.PopCards(deck.Count() + 1); ok {
		t.Fatalf("overdraw must fail")
	}
	var empty CardList
	if c := empty.PopCard(); c != CardInvalid {
		t.Fatalf("PopCard on empty = %v, want CardInvalid", c)
	}
}
