package card

type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

func (ds CardList) Count() int {
	return len(ds)
}

func (ds *CardList) PopCard() Card {
	totalCount := ds.Count()
	if totalCount == 0 {
		return CardInvalid
	}
	card := (*ds)[totalCount-1]
	*ds = (*ds)[:totalCount-1]
	return card
}

func (ds *CardList) PopCards(size int) ([]Card, bool) {
	if size > ds.Count() {
		return nil, false
	}
	cards := make([]Card, size)
	copy(cards, (*ds)[:size])
	*ds = (*ds)[size:]
	return cards, true
}
