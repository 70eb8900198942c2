package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id          TEXT PRIMARY KEY,
	player      TEXT NOT NULL,
	rounds      INTEGER NOT NULL,
	mistakes    INTEGER NOT NULL,
	level       INTEGER NOT NULL,
	difficulty  REAL NOT NULL,
	ledger      TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS results_finished_at ON results(finished_at);
`

const defaultLimit = 20

// timeLayout is fixed width so finished_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Record(ctx context.Context, r Result) error {
	ledger := r.Ledger
	if ledger == nil {
		ledger = map[string]int{}
	}
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results (id, player, rounds, mistakes, level, difficulty, ledger, finished_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		r.ID, r.Player, r.Rounds, r.Mistakes, r.Level, r.Difficulty, string(raw),
		r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.ID, err)
	}
	return nil
}

func (s *sqliteStore) Recent(ctx context.Context, limit int) ([]Result, error) {
	return s.list(ctx, `ORDER BY finished_at DESC`, limit)
}

func (s *sqliteStore) Best(ctx context.Context, limit int) ([]Result, error) {
	return s.list(ctx, `ORDER BY rounds DESC, mistakes ASC, finished_at ASC`, limit)
}

func (s *sqliteStore) list(ctx context.Context, order string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player, rounds, mistakes, level, difficulty, ledger, finished_at
		 FROM results `+order+` LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var (
			r        Result
			ledger   string
			finished string
		)
		if err := rows.Scan(&r.ID, &r.Player, &r.Rounds, &r.Mistakes, &r.Level, &r.Difficulty, &ledger, &finished); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(ledger), &r.Ledger); err != nil {
			return nil, fmt.Errorf("decode ledger for %s: %w", r.ID, err)
		}
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Close() error { return s.db.Close() }
