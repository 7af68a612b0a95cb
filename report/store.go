package report

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started     INTEGER NOT NULL,
	capacity    INTEGER NOT NULL,
	items       INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL,
	ok          INTEGER NOT NULL,
	body        TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
`

// Store keeps run history in a sqlite file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path. ":memory:" gives a
// private in-process database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("report: open %s: %w", path, err)
	}
	// One connection: ":memory:" databases are per connection, and the
	// harness writes from a single goroutine anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("report: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends r and returns its row id.
func (s *Store) Record(ctx context.Context, r *Report) (int64, error) {
	body, err := Encode(r)
	if err != nil {
		return 0, fmt.Errorf("report: encode: %w", err)
	}
	ok := 0
	if r.OK {
		ok = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started, capacity, items, duration_ns, ok, body) VALUES (?, ?, ?, ?, ?, ?)`,
		r.Started, r.Capacity, r.Items, r.DurationNs, ok, string(body))
	if err != nil {
		return 0, fmt.Errorf("report: insert: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to n reports, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("report: query: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("report: scan: %w", err)
		}
		r, err := Decode([]byte(body))
		if err != nil {
			return nil, fmt.Errorf("report: decode row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Failures counts recorded runs that did not verify.
func (s *Store) Failures(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE ok = 0`).Scan(&n)
	return n, err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
