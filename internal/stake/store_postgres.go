package stake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "agentcred/pkg/domain"
)

// PostgresStore persists stake entries and account balances in PostgreSQL.
//
// Schema:
//
//	CREATE TABLE stake_entries (
//	    agent_id      BIGINT PRIMARY KEY,
//	    owner         TEXT NOT NULL,
//	    staked_amount BIGINT NOT NULL CHECK (staked_amount >= 0)
//	);
//	CREATE TABLE account_balances (
//	    identity TEXT PRIMARY KEY,
//	    balance  BIGINT NOT NULL CHECK (balance >= 0)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetEntry(ctx context.Context, agentID id.AgentID) (*Entry, error) {
	var entry Entry
	var amount int64
	err := s.db.QueryRowContext(ctx, `
		SELECT agent_id, owner, staked_amount FROM stake_entries WHERE agent_id = $1
	`, int64(agentID)).Scan(&entry.AgentID, &entry.Owner, &amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stake entry: %w", err)
	}
	entry.StakedAmount = uint64(amount)
	return &entry, nil
}

func (s *PostgresStore) PutEntry(ctx context.Context, entry *Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stake_entries (agent_id, owner, staked_amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (agent_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			staked_amount = EXCLUDED.staked_amount
	`, int64(entry.AgentID), entry.Owner.String(), int64(entry.StakedAmount))
	if err != nil {
		return fmt.Errorf("put stake entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Credit(ctx context.Context, identity id.Identity, amount uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_balances (identity, balance)
		VALUES ($1, $2)
		ON CONFLICT (identity) DO UPDATE SET
			balance = account_balances.balance + EXCLUDED.balance
	`, identity.String(), int64(amount))
	if err != nil {
		return fmt.Errorf("credit account: %w", err)
	}
	return nil
}

func (s *PostgresStore) Balance(ctx context.Context, identity id.Identity) (uint64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `
		SELECT balance FROM account_balances WHERE identity = $1
	`, identity.String()).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("account balance: %w", err)
	}
	return uint64(balance), nil
}
