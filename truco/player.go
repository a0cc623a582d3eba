package truco

import "truco-lite/card"

type Player struct {
	ID   string
	Name string
	Bot  bool

	hand      card.CardList
	roundWins int
}

func (p *Player) Hand() []card.Card { return p.hand }

func (p *Player) RoundWins() int { return p.roundWins }

func (p *Player) resetForNewRound() {
	p.hand = nil
	p.roundWins = 0
}

func (p *Player) takeCard(index int) (card.Card, bool) {
	if index < 0 || index >= len(p.hand) {
		return card.CardInvalid, false
	}
	c := p.hand[index]
	p.hand = append(p.hand[:index], p.hand[index+1:]...)
	return c, true
}
