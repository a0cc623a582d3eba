package truco

import (
	"context"
	"fmt"
	"time"
)

// Ledger is the wallet backend the table settles against. Implementations
// live in internal/ledger; the table only needs reads and signed
// adjustments.
type Ledger interface {
	GetBalance(ctx context.Context, playerID string) (int64, error)
	AdjustBalance(ctx context.Context, playerID string, delta int64, reason string) error
}

// NopLedger approves everything and records nothing. Free tables use it.
type NopLedger struct{}

func (NopLedger) GetBalance(ctx context.Context, playerID string) (int64, error) { return 0, nil }
func (NopLedger) AdjustBalance(ctx context.Context, playerID string, delta int64, reason string) error {
	return nil
}

const ledgerTimeout = 3 * time.Second

// collectBuyInLocked debits the table bet from every human seat. It is
// all-or-nothing: every balance is checked before any debit, so a short
// balance anywhere means nobody pays. The scripted opponent participates in
// the pot but holds no wallet.
func (g *Game) collectBuyInLocked() error {
	g.matchPlayers = append([]string(nil), g.seatOrder...)
	if g.Bet <= 0 || g.buyInDone {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()

	for _, id := range g.seatOrder {
		if g.players[id].Bot {
			continue
		}
		bal, err := g.ledger.GetBalance(ctx, id)
		if err != nil {
			return fmt.Errorf("buy-in balance check for %s: %w", id, err)
		}
		if bal < g.Bet {
			return &InsufficientFundsError{PlayerID: id}
		}
	}
	for _, id := range g.seatOrder {
		if g.players[id].Bot {
			continue
		}
		if err := g.ledger.AdjustBalance(ctx, id, -g.Bet, "truco buy-in "+g.ID); err != nil {
			return fmt.Errorf("buy-in debit for %s: %w", id, err)
		}
	}
	g.buyInDone = true
	g.logf("buy-in collected: %d x %d seats", g.Bet, len(g.matchPlayers))
	return nil
}

// payoutLocked credits the pot to the human members of the winning team,
// splitting evenly with the remainder going to earlier seats. Runs at most
// once per match.
func (g *Game) payoutLocked(winner Team) {
	if g.paidOut || g.Bet <= 0 || !g.buyInDone {
		g.paidOut = true
		return
	}
	g.paidOut = true

	pot := g.Bet * int64(len(g.matchPlayers))
	var winners []string
	for _, id := range g.matchPlayers {
		p, ok := g.players[id]
		if ok && !p.Bot && g.teams[id] == winner {
			winners = append(winners, id)
		}
	}
	if len(winners) == 0 {
		g.logf("pot %d with no human winners, kept by the house", pot)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()

	share := pot / int64(len(winners))
	remainder := pot % int64(len(winners))
	for i, id := range winners {
		amount := share
		if int64(i) < remainder {
			amount++
		}
		if err := g.ledger.AdjustBalance(ctx, id, amount, "truco payout "+g.ID); err != nil {
			g.logf("payout of %d to %s failed: %v", amount, id, err)
		}
	}
	g.logf("pot %d paid to team %s (%d winners)", pot, winner, len(winners))
}
