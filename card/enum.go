package card

const (
	CardInvalid Card = 0
	CardRear    Card = 0xFF
)

// Spade
const (
	CardSpadeA Card = 0x01
	CardSpade2 Card = 0x02
	CardSpade3 Card = 0x03
	CardSpade4 Card = 0x04
	CardSpade5 Card = 0x05
	CardSpade6 Card = 0x06
	CardSpade7 Card = 0x07
	CardSpadeJ Card = 0x0B
	CardSpadeQ Card = 0x0C
	CardSpadeK Card = 0x0D
)

// Heart
const (
	CardHeartA Card = 0x11
	CardHeart2 Card = 0x12
	CardHeart3 Card = 0x13
	CardHeart4 Card = 0x14
	CardHeart5 Card = 0x15
	CardHeart6 Card = 0x16
	CardHeart7 Card = 0x17
	CardHeartJ Card = 0x1B
	CardHeartQ Card = 0x1C
	CardHeartK Card = 0x1D
)

// Club
const (
	CardClubA Card = 0x21
	CardClub2 Card = 0x22
	CardClub3 Card = 0x23
	CardClub4 Card = 0x24
	CardClub5 Card = 0x25
	CardClub6 Card = 0x26
	CardClub7 Card = 0x27
	CardClubJ Card = 0x2B
	CardClubQ Card = 0x2C
	CardClubK Card = 0x2D
)

// Diamond
const (
	CardDiamondA Card = 0x31
	CardDiamond2 Card = 0x32
	CardDiamond3 Card = 0x33
	CardDiamond4 Card = 0x34
	CardDiamond5 Card = 0x35
	CardDiamond6 Card = 0x36
	CardDiamond7 Card = 0x37
	CardDiamondJ Card = 0x3B
	CardDiamondQ Card = 0x3C
	CardDiamondK Card = 0x3D
)

// TrucoCards is the full 40-card deck: ranks 4 5 6 7 Q J K A 2 3 in each suit.
var TrucoCards = []Card{
	CardSpade4, CardSpade5, CardSpade6, CardSpade7, CardSpadeQ,
	CardSpadeJ, CardSpadeK, CardSpadeA, CardSpade2, CardSpade3,
	CardHeart4, CardHeart5, CardHeart6, CardHeart7, CardHeartQ,
	CardHeartJ, CardHeartK, CardHeartA, CardHeart2, CardHeart3,
	CardClub4, CardClub5, CardClub6, CardClub7, CardClubQ,
	CardClubJ, CardClubK, CardClubA, CardClub2, CardClub3,
	CardDiamond4, CardDiamond5, CardDiamond6, CardDiamond7, CardDiamondQ,
	CardDiamondJ, CardDiamondK, CardDiamondA, CardDiamond2, CardDiamond3,
}
