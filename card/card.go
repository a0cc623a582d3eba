package card

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Card encoding:
// - high 4 bits: suit (0:Spade, 1:Heart, 2:Club, 3:Diamond)
// - low 4 bits: rank (1:A, 2..7, 11:J, 12:Q, 13:K)
//
// The truco deck has no 8, 9 or 10; those rank codes are never produced.
type Card byte

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	if c == CardRear {
		return "Rear"
	}
	return fmt.Sprintf("%s%s", rankName(c.Rank()), c.Suit())
}

// Rank returns the face value code (A=1, 2..7, J=11, Q=12, K=13).
func (c Card) Rank() byte {
	if c == CardInvalid || c == CardRear {
		return 0
	}
	return byte(c & 0x0F)
}

// Suit returns the suit (0:Spade, 1:Heart, 2:Club, 3:Diamond).
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func rankName(r byte) string {
	switch r {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 0:
		return "?"
	default:
		return fmt.Sprintf("%d", r)
	}
}

// ParseCard converts a string such as "As", "7d" or "Qc" into a Card.
func ParseCard(cardStr string) (Card, error) {
	if len(cardStr) < 2 {
		return 0, fmt.Errorf("invalid card string: %s", cardStr)
	}

	suitChar := cardStr[len(cardStr)-1]
	var suitBase Card
	switch suitChar {
	case 's', 'S':
		suitBase = 0x00
	case 'h', 'H':
		suitBase = 0x10
	case 'c', 'C':
		suitBase = 0x20
	case 'd', 'D':
		suitBase = 0x30
	default:
		return 0, fmt.Errorf("invalid suit: %c", suitChar)
	}

	var rankVal Card
	switch strings.ToUpper(cardStr[:len(cardStr)-1]) {
	case "A":
		rankVal = 0x01
	case "2":
		rankVal = 0x02
	case "3":
		rankVal = 0x03
	case "4":
		rankVal = 0x04
	case "5":
		rankVal = 0x05
	case "6":
		rankVal = 0x06
	case "7":
		rankVal = 0x07
	case "J":
		rankVal = 0x0B
	case "Q":
		rankVal = 0x0C
	case "K":
		rankVal = 0x0D
	default:
		return 0, fmt.Errorf("invalid rank: %s", cardStr[:len(cardStr)-1])
	}

	return suitBase + rankVal, nil
}

type cardJSON struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON renders the card as {"rank":"Q","suit":"♥"} for the web layer.
// CardRear marshals as a face-down placeholder with an empty rank.
func (c Card) MarshalJSON() ([]byte, error) {
	if c == CardInvalid || c == CardRear {
		return json.Marshal(cardJSON{Rank: "", Suit: "?"})
	}
	return json.Marshal(cardJSON{Rank: rankName(c.Rank()), Suit: c.Suit().String()})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	if cj.Rank == "" {
		*c = CardRear
		return nil
	}
	var suitBase Card
	switch cj.Suit {
	case "♠":
		suitBase = 0x00
	case "♥":
		suitBase = 0x10
	case "♣":
		suitBase = 0x20
	case "♦":
		suitBase = 0x30
	default:
		return fmt.Errorf("invalid suit: %s", cj.Suit)
	}
	parsed, err := ParseCard(cj.Rank + "s")
	if err != nil {
		return err
	}
	*c = suitBase + (parsed & 0x0F)
	return nil
}
