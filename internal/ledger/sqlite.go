package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "truco_local.db"

type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath := envOrDefault("LEDGER_DB_PATH", "")
	if dbPath == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = "."
		}
		dbPath = filepath.Join(base, "truco-lite", defaultLocalDBName)
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteService{db: db}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS wallet_balance (
    player_id  TEXT PRIMARY KEY,
    balance    INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS wallet_journal (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    player_id  TEXT NOT NULL,
    delta      INTEGER NOT NULL,
    reason     TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wallet_journal_player
    ON wallet_journal (player_id, id DESC);
`)
	return err
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) GetBalance(ctx context.Context, playerID string) (int64, error) {
	var bal int64
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM wallet_balance WHERE player_id = ?`, playerID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return bal, err
}

func (s *SQLiteService) AdjustBalance(ctx context.Context, playerID string, delta int64, reason string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var bal int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM wallet_balance WHERE player_id = ?`, playerID).Scan(&bal)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if bal+delta < 0 {
		return ErrInsufficientFunds
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO wallet_balance (player_id, balance, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at
`, playerID, bal+delta, now); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO wallet_journal (player_id, delta, reason, created_at)
VALUES (?, ?, ?, ?)
`, playerID, delta, reason, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteService) History(ctx context.Context, playerID string, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, player_id, delta, reason, created_at
FROM wallet_journal
WHERE player_id = ?
ORDER BY id DESC
LIMIT ?
`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []JournalEntry{}
	for rows.Next() {
		var e JournalEntry
		var created string
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Delta, &e.Reason, &created); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
			e.CreatedAt = ts
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
