package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists the event log in PostgreSQL. The payload column
// carries the full event as JSONB so new fields never need a migration;
// indexed columns exist only for the query paths.
//
// Schema:
//
//	CREATE TABLE ledger_events (
//	    id         UUID PRIMARY KEY,
//	    event_type TEXT NOT NULL,
//	    agent_id   BIGINT,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    payload    JSONB NOT NULL
//	);
//	CREATE INDEX ledger_events_agent_idx ON ledger_events (agent_id, occurred_at);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_events (id, event_type, agent_id, occurred_at, payload)
		VALUES ($1, $2, NULLIF($3, 0), $4, $5)
	`, event.ID, string(event.Type), int64(event.AgentID), event.Timestamp, payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM (
			SELECT payload, occurred_at FROM ledger_events
			ORDER BY occurred_at DESC LIMIT $1
		) recent ORDER BY occurred_at ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListByAgent(ctx context.Context, agentID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM ledger_events
		WHERE agent_id = $1
		ORDER BY occurred_at ASC
	`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list agent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
