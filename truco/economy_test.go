package truco

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeLedger is an in-memory wallet recording every adjustment.
type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	adjusts  []string
}

func newFakeLedger(balances map[string]int64) *fakeLedger {
	if balances == nil {
		balances = map[string]int64{}
	}
	return &fakeLedger{balances: balances}
}

func (f *fakeLedger) GetBalance(_ context.Context, playerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID], nil
}

func (f *fakeLedger) AdjustBalance(_ context.Context, playerID string, delta int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[playerID] += delta
	f.adjusts = append(f.adjusts, playerID)
	return nil
}

func (f *fakeLedger) balance(playerID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[playerID]
}

func (f *fakeLedger) adjustCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.adjusts)
}

func newBettingGame(t *testing.T, bet int64, ledger Ledger) *Game {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 7
	cfg.TrickRevealDelay = time.Hour
	cfg.RoundEndDelay = time.Hour
	cfg.BotThinkDelay = time.Hour
	cfg.BotResponseDelay = time.Hour
	cfg.HandElevenDelay = time.Hour
	cfg.RestartDelay = time.Hour
	g, err := NewGame("t1", "cash table", bet, "p0", cfg, ledger)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	return g
}

func TestBuyInAllOrNothing(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"p0": 100, "p1": 5})
	g := newBettingGame(t, 50, ledger)
	for _, id := range []string{"p0", "p1"} {
		if err := g.Join(id, id); err != nil {
			t.Fatalf("join err: %v", err)
		}
	}

	err := g.StartMatch("p0")
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("start with a short balance: got %v, want InsufficientFundsError", err)
	}
	if insufficient.PlayerID != "p1" {
		t.Fatalf("short player = %s, want p1", insufficient.PlayerID)
	}
	// No balance may move when anyone is short.
	if ledger.adjustCount() != 0 {
		t.Fatalf("balances were touched: %d adjustments", ledger.adjustCount())
	}
	if got := gameStatus(g); got != StatusWaiting {
		t.Fatalf("table must stay in waiting, got %s", got)
	}
}

func TestBuyInDebitsHumansOnly(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"p0": 100, "p1": 100})
	g := newBettingGame(t, 40, ledger)
	for _, id := range []string{"p0", "p1"} {
		if err := g.Join(id, id); err != nil {
			t.Fatalf("join err: %v", err)
		}
	}
	if err := g.AddBot(nil); err != nil {
		t.Fatalf("add bot err: %v", err)
	}
	if err := g.StartMatch("p0"); err != nil {
		t.Fatalf("start err: %v", err)
	}

	if ledger.balance("p0") != 60 || ledger.balance("p1") != 60 {
		t.Fatalf("balances after buy-in: p0=%d p1=%d, want 60/60",
			ledger.balance("p0"), ledger.balance("p1"))
	}
	if ledger.adjustCount() != 2 {
		t.Fatalf("adjustments = %d, want 2 (bot holds no wallet)", ledger.adjustCount())
	}
}

func TestPayoutSplitsPotWithRemainder(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"p0": 0, "p1": 0, "p2": 0})
	g := newBettingGame(t, 5, ledger)
	for _, id := range []string{"p0", "p1", "p2"} {
		if err := g.Join(id, id); err != nil {
			t.Fatalf("join err: %v", err)
		}
	}

	g.mu.Lock()
	g.rebuildTeamsLocked()
	g.matchPlayers = append([]string(nil), g.seatOrder...)
	g.buyInDone = true
	// Pot 15 over two team A winners: 8 to the earlier seat, 7 to the later.
	g.payoutLocked(TeamA)
	g.mu.Unlock()

	if ledger.balance("p0") != 8 || ledger.balance("p2") != 7 {
		t.Fatalf("payout p0=%d p2=%d, want 8/7", ledger.balance("p0"), ledger.balance("p2"))
	}
	if ledger.balance("p1") != 0 {
		t.Fatalf("loser was paid: %d", ledger.balance("p1"))
	}
}

func TestPayoutRunsAtMostOnce(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"p0": 50, "p1": 50})
	g := newBettingGame(t, 10, ledger)
	for _, id := range []string{"p0", "p1"} {
		if err := g.Join(id, id); err != nil {
			t.Fatalf("join err: %v", err)
		}
	}
	if err := g.StartMatch("p0"); err != nil {
		t.Fatalf("start err: %v", err)
	}

	g.mu.Lock()
	g.score[TeamA] = g.cfg.MatchTarget
	g.finishMatchLocked()
	first := ledger.balance("p0")
	g.payoutLocked(TeamA)
	g.finishMatchLocked()
	second := ledger.balance("p0")
	g.mu.Unlock()

	if first != 40+20 {
		t.Fatalf("winner balance after payout = %d, want 60", first)
	}
	if second != first {
		t.Fatalf("payout ran twice: %d then %d", first, second)
	}
	if got := gameStatus(g); got != StatusFinished {
		t.Fatalf("status = %s, want finished", got)
	}
}

func TestAutoRestartDealsNextMatch(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"p0": 100, "p1": 100})
	g := newBettingGame(t, 10, ledger)
	g.cfg.RestartDelay = 10 * time.Millisecond
	for _, id := range []string{"p0", "p1"} {
		if err := g.Join(id, id); err != nil {
			t.Fatalf("join err: %v", err)
		}
	}
	if err := g.StartMatch("p0"); err != nil {
		t.Fatalf("start err: %v", err)
	}

	g.mu.Lock()
	g.score[TeamA] = g.cfg.MatchTarget
	g.finishMatchLocked()
	g.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if gameStatus(g) == StatusPlaying {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusPlaying {
		t.Fatalf("status after restart = %s, want playing", g.status)
	}
	if g.score[TeamA] != 0 || g.score[TeamB] != 0 {
		t.Fatalf("scores must reset, got A=%d B=%d", g.score[TeamA], g.score[TeamB])
	}
	for id, p := range g.players {
		if p.hand.Count() != 3 {
			t.Fatalf("%s holds %d cards after restart, want 3", id, p.hand.Count())
		}
	}
	// Pot of 20 went to p0, then both seats bought into the next match.
	if ledger.balance("p0") != 100 || ledger.balance("p1") != 80 {
		t.Fatalf("balances p0=%d p1=%d, want 100/80", ledger.balance("p0"), ledger.balance("p1"))
	}
}

func TestAutoRestartCancelledOnShortBalance(t *testing.T) {
	ledger := newFakeLedger(map[string]int64{"p0": 100, "p1": 10})
	g := newBettingGame(t, 10, ledger)
	g.cfg.RestartDelay = 10 * time.Millisecond
	for _, id := range []string{"p0", "p1"} {
		if err := g.Join(id, id); err != nil {
			t.Fatalf("join err: %v", err)
		}
	}
	if err := g.StartMatch("p0"); err != nil {
		t.Fatalf("start err: %v", err)
	}

	// p1 is broke after the buy-in; the pot goes to p0.
	g.mu.Lock()
	g.score[TeamA] = g.cfg.MatchTarget
	g.finishMatchLocked()
	g.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if gameStatus(g) == StatusWaiting {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusWaiting {
		t.Fatalf("status after cancelled restart = %s, want waiting", g.status)
	}
	if g.lastResult == nil || !strings.Contains(g.lastResult.Reason, "restart cancelled") {
		t.Fatalf("lastResult = %+v, want a restart-cancelled notice", g.lastResult)
	}
	if g.buyInDone {
		t.Fatalf("no buy-in may stick after a cancelled restart")
	}
	// Two buy-in debits and one payout, nothing more.
	if ledger.adjustCount() != 3 {
		t.Fatalf("adjustments = %d, want 3", ledger.adjustCount())
	}
	if ledger.balance("p0") != 110 || ledger.balance("p1") != 0 {
		t.Fatalf("balances p0=%d p1=%d, want 110/0", ledger.balance("p0"), ledger.balance("p1"))
	}
}
