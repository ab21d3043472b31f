// Package sqlite persists the cycle audit trail in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nutriguide"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cycle_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	correlation_id TEXT NOT NULL,
	sequence INTEGER NOT NULL,
	kind TEXT NOT NULL,
	state TEXT NOT NULL,
	envelope_id TEXT NOT NULL DEFAULT '',
	sender TEXT NOT NULL DEFAULT '',
	intent TEXT NOT NULL DEFAULT '',
	envelope TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL,
	UNIQUE(correlation_id, sequence)
);
CREATE INDEX IF NOT EXISTS idx_cycle_events_cycle ON cycle_events(correlation_id, sequence);
CREATE INDEX IF NOT EXISTS idx_cycle_events_sender ON cycle_events(sender, created_at);
`

// Store is a nutriguide.CycleLogger backed by SQLite.
type Store struct {
	db *sql.DB
}

var _ nutriguide.CycleLogger = (*Store)(nil)

func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set sqlite pragma %q: %w", stmt, err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// LogEvent inserts one event. Envelope fields used for lookups get their own columns; the full
// flattened envelope is kept as JSON.
func (s *Store) LogEvent(ev nutriguide.CycleEvent) error {
	var envelope string
	if len(ev.Envelope) > 0 {
		data, err := json.Marshal(ev.Envelope)
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}
		envelope = string(data)
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO cycle_events(
			correlation_id, sequence, kind, state, envelope_id, sender, intent, envelope, error, created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.CorrelationID, ev.Sequence, ev.Kind, ev.State,
		str(ev.Envelope["id"]), str(ev.Envelope["sender_id"]), str(ev.Envelope["intent"]),
		envelope, ev.Error, ev.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert cycle event: %w", err)
	}
	return nil
}

// Events returns the audit trail of one cycle in sequence order.
func (s *Store) Events(ctx context.Context, correlationID string) ([]nutriguide.CycleEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT correlation_id, sequence, kind, state, envelope, error, created_at
		FROM cycle_events
		WHERE correlation_id = ?
		ORDER BY sequence ASC`,
		correlationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cycle events: %w", err)
	}
	defer rows.Close()

	var out []nutriguide.CycleEvent
	for rows.Next() {
		var (
			ev       nutriguide.CycleEvent
			envelope string
			created  int64
		)
		if err := rows.Scan(&ev.CorrelationID, &ev.Sequence, &ev.Kind, &ev.State, &envelope, &ev.Error, &created); err != nil {
			return nil, fmt.Errorf("scan cycle event: %w", err)
		}
		if envelope != "" {
			if err := json.Unmarshal([]byte(envelope), &ev.Envelope); err != nil {
				return nil, fmt.Errorf("decode envelope of event %d: %w", ev.Sequence, err)
			}
		}
		ev.Timestamp = time.Unix(0, created).UTC()
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cycle events: %w", err)
	}
	return out, nil
}

// CountBySender returns how many events each sender produced, across all cycles.
func (s *Store) CountBySender(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sender, COUNT(*)
		FROM cycle_events
		WHERE sender <> ''
		GROUP BY sender`)
	if err != nil {
		return nil, fmt.Errorf("count events by sender: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			sender string
			n      int
		)
		if err := rows.Scan(&sender, &n); err != nil {
			return nil, fmt.Errorf("scan sender count: %w", err)
		}
		out[sender] = n
	}
	return out, rows.Err()
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
