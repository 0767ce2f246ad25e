package reputation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists reputation scores in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE reputation_scores (
//	    subject TEXT PRIMARY KEY,
//	    score   BIGINT NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, subject string) (int64, error) {
	var score int64
	err := s.db.QueryRowContext(ctx, `
		SELECT score FROM reputation_scores WHERE subject = $1
	`, subject).Scan(&score)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get reputation: %w", err)
	}
	return score, nil
}

func (s *PostgresStore) Put(ctx context.Context, subject string, score int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reputation_scores (subject, score)
		VALUES ($1, $2)
		ON CONFLICT (subject) DO UPDATE SET score = EXCLUDED.score
	`, subject, score)
	if err != nil {
		return fmt.Errorf("put reputation: %w", err)
	}
	return nil
}
