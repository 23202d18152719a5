package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			catalog_name TEXT NOT NULL DEFAULT '',
			start_ts TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS cart_lines (
			product_id INTEGER PRIMARY KEY,
			quantity INTEGER NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS cart_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			op TEXT NOT NULL,
			product_id INTEGER NOT NULL DEFAULT 0,
			quantity INTEGER NOT NULL DEFAULT 0,
			accepted INTEGER NOT NULL DEFAULT 1,
			event_ts TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE INDEX IF NOT EXISTS cart_events_session ON cart_events(session_id);`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// StartSession records a new session and returns its id. A blank id gets a
// fresh UUID.
func (s *SQLiteStore) StartSession(ctx context.Context, session Session) (string, error) {
	id := strings.TrimSpace(session.ID)
	if id == "" {
		id = uuid.NewString()
	}
	start := session.StartTS
	if start.IsZero() {
		start = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(id, catalog_name, start_ts) VALUES(?,?,?)`,
		id,
		strings.TrimSpace(session.CatalogName),
		start.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) RecordCartEvent(ctx context.Context, event CartEvent) error {
	op := strings.TrimSpace(event.Op)
	if op == "" {
		return nil
	}
	ts := event.TS
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cart_events(session_id, op, product_id, quantity, accepted, event_ts) VALUES(?,?,?,?,?,?)`,
		event.SessionID,
		op,
		event.ProductID,
		event.Quantity,
		ifThen(event.Accepted, 1, 0),
		ts.UTC().Format(timeLayout),
	)
	return err
}

// SaveCart replaces the stored cart snapshot with lines, keeping their order.
func (s *SQLiteStore) SaveCart(ctx context.Context, lines []CartLine) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_lines`); err != nil {
		return err
	}
	for i, line := range lines {
		if line.ProductID <= 0 || line.Quantity <= 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO cart_lines(product_id, quantity, position) VALUES(?, ?, ?)
			ON CONFLICT(product_id) DO UPDATE SET quantity = excluded.quantity
		`, line.ProductID, line.Quantity, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadCart(ctx context.Context) ([]CartLine, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT product_id, quantity FROM cart_lines ORDER BY position, product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CartLine
	for rows.Next() {
		var line CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) SaveSettings(ctx context.Context, values map[string]string) (err error) {
	if len(values) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO app_settings(key, value) VALUES(?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, k, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLiteStore) CountCartEvents(ctx context.Context, sessionID string) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_events WHERE session_id = ?`, sessionID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context) (Summary, error) {
	var out Summary
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM cart_events),
			(SELECT COUNT(*) FROM cart_events WHERE accepted = 0),
			(SELECT COUNT(*) FROM cart_lines)
	`)
	if err := row.Scan(&out.Sessions, &out.Events, &out.Rejected, &out.CartLines); err != nil {
		return Summary{}, err
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func ifThen(cond bool, yes, no int) int {
	if cond {
		return yes
	}
	return no
}
