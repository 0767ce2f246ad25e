package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "agentcred/pkg/domain"
)

// PostgresStore persists content records in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE content_records (
//	    content_hash TEXT PRIMARY KEY,
//	    author       TEXT NOT NULL,
//	    agent_id     BIGINT NOT NULL,
//	    uri          TEXT NOT NULL,
//	    status       TEXT NOT NULL,
//	    audit_score  INT NOT NULL DEFAULT 0,
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    audited_at   TIMESTAMPTZ
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, hash id.ContentHash) (*Record, error) {
	var (
		record    Record
		auditedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash, author, agent_id, uri, status, audit_score, created_at, audited_at
		FROM content_records
		WHERE content_hash = $1
	`, string(hash)).Scan(
		&record.ContentHash, &record.Author, &record.AgentID, &record.URI,
		&record.Status, &record.AuditScore, &record.CreatedAt, &auditedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get content record: %w", err)
	}
	if auditedAt.Valid {
		record.AuditedAt = auditedAt.Time
	}
	return &record, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *Record) error {
	auditedAt := sql.NullTime{Time: record.AuditedAt, Valid: !record.AuditedAt.IsZero()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_records (content_hash, author, agent_id, uri, status, audit_score, created_at, audited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (content_hash) DO UPDATE SET
			status      = EXCLUDED.status,
			audit_score = EXCLUDED.audit_score,
			audited_at  = EXCLUDED.audited_at
	`, string(record.ContentHash), string(record.Author), int64(record.AgentID),
		record.URI, string(record.Status), record.AuditScore, record.CreatedAt, auditedAt)
	if err != nil {
		return fmt.Errorf("put content record: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_hash, author, agent_id, uri, status, audit_score, created_at, audited_at
		FROM content_records
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list content records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			record    Record
			auditedAt sql.NullTime
		)
		if err := rows.Scan(
			&record.ContentHash, &record.Author, &record.AgentID, &record.URI,
			&record.Status, &record.AuditScore, &record.CreatedAt, &auditedAt,
		); err != nil {
			return nil, fmt.Errorf("scan content record: %w", err)
		}
		if auditedAt.Valid {
			record.AuditedAt = auditedAt.Time
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
