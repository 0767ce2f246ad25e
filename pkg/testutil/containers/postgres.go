//go:build integration

// Package containers provides shared testcontainer helpers for integration
// tests. Containers are started per suite; Ryuk reaps them after the run.
package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// schema holds every table the engine persists. Integration tests apply it
// to a fresh database; production deployments run the same DDL as a
// migration.
const schema = `
CREATE TABLE IF NOT EXISTS stake_entries (
    agent_id      BIGINT PRIMARY KEY,
    owner         TEXT NOT NULL,
    staked_amount BIGINT NOT NULL CHECK (staked_amount >= 0)
);
CREATE TABLE IF NOT EXISTS account_balances (
    identity TEXT PRIMARY KEY,
    balance  BIGINT NOT NULL CHECK (balance >= 0)
);
CREATE TABLE IF NOT EXISTS reputation_scores (
    subject TEXT PRIMARY KEY,
    score   BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS content_records (
    content_hash TEXT PRIMARY KEY,
    author       TEXT NOT NULL,
    agent_id     BIGINT NOT NULL,
    uri          TEXT NOT NULL,
    status       TEXT NOT NULL,
    audit_score  INT NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL,
    audited_at   TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS ledger_events (
    id          UUID PRIMARY KEY,
    event_type  TEXT NOT NULL,
    agent_id    BIGINT,
    occurred_at TIMESTAMPTZ NOT NULL,
    payload     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS ledger_events_agent_idx ON ledger_events (agent_id, occurred_at);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// engine schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("agentcred_test"),
		tcpostgres.WithUsername("agentcred"),
		tcpostgres.WithPassword("agentcred"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{Container: container, DSN: dsn, DB: db}
	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})
	return pc
}

// TruncateTables clears the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", strings.Join(tables, ", ")))
	return err
}
