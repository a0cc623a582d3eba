package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newSQLiteForTest(t *testing.T) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestSQLiteBalancePersistsAcrossAdjustments(t *testing.T) {
	svc := newSQLiteForTest(t)
	ctx := context.Background()

	bal, err := svc.GetBalance(ctx, "alice")
	if err != nil || bal != 0 {
		t.Fatalf("fresh wallet = (%d, %v), want (0, nil)", bal, err)
	}

	if err := svc.AdjustBalance(ctx, "alice", 200, "deposit"); err != nil {
		t.Fatalf("deposit err: %v", err)
	}
	if err := svc.AdjustBalance(ctx, "alice", -50, "truco buy-in t1"); err != nil {
		t.Fatalf("debit err: %v", err)
	}
	bal, err = svc.GetBalance(ctx, "alice")
	if err != nil || bal != 150 {
		t.Fatalf("balance = (%d, %v), want (150, nil)", bal, err)
	}
}

func TestSQLiteRejectsOverdraftAndKeepsJournalClean(t *testing.T) {
	svc := newSQLiteForTest(t)
	ctx := context.Background()

	if err := svc.AdjustBalance(ctx, "bob", 30, "deposit"); err != nil {
		t.Fatalf("deposit err: %v", err)
	}
	err := svc.AdjustBalance(ctx, "bob", -31, "buy-in")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("overdraft: got %v, want ErrInsufficientFunds", err)
	}

	entries, err := svc.History(ctx, "bob", 10)
	if err != nil {
		t.Fatalf("history err: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("rejected debit was journaled: %d entries", len(entries))
	}
	if entries[0].Delta != 30 || entries[0].Reason != "deposit" {
		t.Fatalf("journal entry = %+v", entries[0])
	}
}

func TestSQLiteJournalOrderAndLimit(t *testing.T) {
	svc := newSQLiteForTest(t)
	ctx := context.Background()

	for i, delta := range []int64{10, 20, 30} {
		if err := svc.AdjustBalance(ctx, "carol", delta, "deposit"); err != nil {
			t.Fatalf("deposit %d err: %v", i, err)
		}
	}
	entries, err := svc.History(ctx, "carol", 2)
	if err != nil {
		t.Fatalf("history err: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Delta != 30 || entries[1].Delta != 20 {
		t.Fatalf("journal not newest-first: %+v", entries)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatalf("created_at not persisted")
	}
}
