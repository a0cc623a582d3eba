package truco

import (
	"fmt"
	"testing"
	"time"

	"truco-lite/card"
)

// newTestGame builds a table with n seated humans p0..p(n-1). Every delay is
// huge so deferred tasks never fire on their own; tests drive resolution
// directly.
func newTestGame(t *testing.T, n int) *Game {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 1
	cfg.TrickRevealDelay = time.Hour
	cfg.RoundEndDelay = time.Hour
	cfg.BotThinkDelay = time.Hour
	cfg.BotResponseDelay = time.Hour
	cfg.HandElevenDelay = time.Hour
	cfg.RestartDelay = time.Hour
	g, err := NewGame("t1", "test table", 0, "p0", cfg, nil)
	if err != nil {
		t.Fatalf("NewGame err: %v", err)
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("p%d", i)
		if err := g.Join(id, id); err != nil {
			t.Fatalf("Join %s err: %v", id, err)
		}
	}
	return g
}

// beginRound puts the table mid-round with fixed hands and turn-up, skipping
// the shuffle.
func beginRound(t *testing.T, g *Game, turnUp card.Card, lead string, hands map[string][]card.Card) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rebuildTeamsLocked()
	if g.matchPlayers == nil {
		g.matchPlayers = append([]string(nil), g.seatOrder...)
	}
	for id, cs := range hands {
		p, ok := g.players[id]
		if !ok {
			t.Fatalf("no such seat %s", id)
		}
		p.hand.Init(cs)
		p.roundWins = 0
	}
	g.turnUp = turnUp
	g.dealer = g.seatOrder[len(g.seatOrder)-1]
	g.turn = lead
	g.status = StatusPlaying
	g.trick = nil
	g.trickNumber = 1
	g.trickWins = map[Team]int{TeamA: 0, TeamB: 0}
	g.trickHistory = nil
	g.stake = 1
	g.pendingRaise = nil
	g.raiseDisabled = false
	g.canRaiseTeam = TeamNone
	g.lastRaiseTeam = TeamNone
	g.special = nil
	g.lastResult = nil
}

// resolveNow fires the trick resolution the reveal timer would run.
func resolveNow(t *testing.T, g *Game) {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusResolvingTrick {
		t.Fatalf("expected resolvingTrick before resolve, got %s", g.status)
	}
	g.resolveTrickLocked()
}

func mustPlay(t *testing.T, g *Game, playerID string, idx int) {
	t.Helper()
	if err := g.PlayCard(playerID, idx); err != nil {
		t.Fatalf("PlayCard %s[%d] err: %v", playerID, idx, err)
	}
}

func gameStatus(g *Game) Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func gameTurn(g *Game) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

func teamScore(g *Game, team Team) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.score[team]
}
