// Package sink is a local development collector for the agent: an HTTP
// endpoint speaking the ingestion wire contract, backed by an embedded
// sqlite store. It is a test harness, not the production aggregation
// layer.
package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/vitalwatch/telemetry-agent/internal/event"
)

// Store persists ingested events.
type Store interface {
	// InsertBatch inserts events in order and returns how many were
	// written.
	InsertBatch(ctx context.Context, events []event.Event) (int, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store.
	Close() error
}

// SQLiteStore implements Store on an embedded sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string, log *zap.Logger) (*SQLiteStore, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, log: log}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS events(
	  id           TEXT    PRIMARY KEY,
	  seq          INTEGER NOT NULL,
	  kind         TEXT    NOT NULL CHECK (kind IN ('page_view','vital','error','custom')),
	  ts_ms        INTEGER NOT NULL,
	  site_id      TEXT    NOT NULL,
	  url          TEXT    NOT NULL,
	  path         TEXT    NOT NULL,
	  payload_json TEXT    NOT NULL CHECK (json_valid(payload_json))
	);
	CREATE INDEX IF NOT EXISTS idx_events_ts   ON events(ts_ms);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_site ON events(site_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

// InsertBatch writes the batch in one transaction, preserving enqueue
// order through the seq column.
func (s *SQLiteStore) InsertBatch(ctx context.Context, events []event.Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO events (id, seq, kind, ts_ms, site_id, url, path, payload_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var nextSeq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM events`).Scan(&nextSeq); err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}

	inserted := 0
	for i, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			s.log.Warn("Skipping unserializable event", zap.Error(err))
			continue
		}

		if _, err := stmt.ExecContext(ctx,
			uuid.NewString(), nextSeq+int64(i), string(e.Kind), e.Timestamp,
			e.SiteID, e.URL, e.Path, string(payload)); err != nil {
			return inserted, fmt.Errorf("failed to insert event: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return inserted, nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CountEvents returns the number of stored events, optionally filtered by
// kind. Used by tests and the health surface.
func (s *SQLiteStore) CountEvents(ctx context.Context, kind string) (int, error) {
	var count int
	var err error
	if kind == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}
