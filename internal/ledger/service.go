// Package ledger is the wallet backend tables settle buy-ins and payouts
// against. Three implementations: in-memory for tests and free play, sqlite
// for single-node deployments, postgres for everything else.
package ledger

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// JournalEntry is one signed movement on a player's wallet.
type JournalEntry struct {
	ID        int64     `json:"id"`
	PlayerID  string    `json:"player_id"`
	Delta     int64     `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type Service interface {
	Close() error
	GetBalance(ctx context.Context, playerID string) (int64, error)
	// AdjustBalance applies a signed delta and journals it. A debit that
	// would push the balance negative fails with ErrInsufficientFunds and
	// leaves the wallet untouched.
	AdjustBalance(ctx context.Context, playerID string, delta int64, reason string) error
	History(ctx context.Context, playerID string, limit int) ([]JournalEntry, error)
}

const defaultHistoryLimit = 50

// NewServiceFromEnv picks a backend by mode: "memory", "sqlite"/"local", or
// anything else for postgres. Returns the backend name for the startup log.
func NewServiceFromEnv(mode string) (Service, string, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "memory":
		return NewMemoryService(), "memory", nil
	case "local", "sqlite":
		svc, err := NewSQLiteServiceFromEnv()
		if err != nil {
			return nil, "", err
		}
		return svc, "sqlite", nil
	}
	svc, err := NewPostgresServiceFromEnv()
	if err != nil {
		return nil, "", err
	}
	return svc, "postgres", nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// MemoryService keeps wallets in a map. Balances start at zero; tests seed
// them with AdjustBalance.
type MemoryService struct {
	mu       sync.Mutex
	balances map[string]int64
	journal  []JournalEntry
	nextID   int64
}

func NewMemoryService() *MemoryService {
	return &MemoryService{balances: make(map[string]int64), nextID: 1}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) GetBalance(_ context.Context, playerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[playerID], nil
}

func (s *MemoryService) AdjustBalance(_ context.Context, playerID string, delta int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balances[playerID]+delta < 0 {
		return ErrInsufficientFunds
	}
	s.balances[playerID] += delta
	s.journal = append(s.journal, JournalEntry{
		ID:        s.nextID,
		PlayerID:  playerID,
		Delta:     delta,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	})
	s.nextID++
	return nil
}

func (s *MemoryService) History(_ context.Context, playerID string, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []JournalEntry{}
	for i := len(s.journal) - 1; i >= 0 && len(out) < limit; i-- {
		if s.journal[i].PlayerID == playerID {
			out = append(out, s.journal[i])
		}
	}
	return out, nil
}
