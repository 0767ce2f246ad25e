package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the engine. Values come from
// AGENTCRED_* environment variables with development defaults so a bare
// `go run ./cmd/server` works against in-memory stores.
type Config struct {
	Addr string
	// RequestTimeout bounds each request; the server's socket timeouts are
	// derived from it.
	RequestTimeout time.Duration

	// Identities fixed at deployment time. Admin holds the admin capability
	// implicitly; Orchestrator is granted the auditor role at startup so the
	// audit workflow can commit its own verdicts.
	AdminIdentity        string
	OrchestratorIdentity string
	TreasuryAccount      string

	JWTSigningKey string

	Verifier VerifierConfig
	Fallback FallbackConfig

	// Optional backends. Empty means the corresponding in-memory
	// implementation is used.
	PostgresDSN  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
}

// VerifierConfig locates the external verifier service.
type VerifierConfig struct {
	URL     string
	Timeout time.Duration
}

// FallbackConfig tunes the local heuristic verdict used when the verifier is
// unavailable. The marker token and scores are placeholders for a real trust
// oracle and deliberately configurable.
type FallbackConfig struct {
	MarkerToken  string
	FailScore    int
	PassScoreMin int
	PassScoreMax int
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:                 envOr("AGENTCRED_ADDR", ":8080"),
		RequestTimeout:       envDurationOr("AGENTCRED_REQUEST_TIMEOUT", 30*time.Second),
		AdminIdentity:        envOr("AGENTCRED_ADMIN", "admin"),
		OrchestratorIdentity: envOr("AGENTCRED_ORCHESTRATOR", "orchestrator"),
		TreasuryAccount:      envOr("AGENTCRED_TREASURY", "treasury"),
		JWTSigningKey:        envOr("AGENTCRED_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		Verifier: VerifierConfig{
			URL:     os.Getenv("AGENTCRED_VERIFIER_URL"),
			Timeout: envDurationOr("AGENTCRED_VERIFIER_TIMEOUT", 5*time.Second),
		},
		Fallback: FallbackConfig{
			MarkerToken:  envOr("AGENTCRED_UNSAFE_MARKER", "unsafe"),
			FailScore:    envIntOr("AGENTCRED_FALLBACK_FAIL_SCORE", 20),
			PassScoreMin: envIntOr("AGENTCRED_FALLBACK_PASS_MIN", 80),
			PassScoreMax: envIntOr("AGENTCRED_FALLBACK_PASS_MAX", 95),
		},
		PostgresDSN: os.Getenv("AGENTCRED_POSTGRES_DSN"),
		RedisURL:    os.Getenv("AGENTCRED_REDIS_URL"),
		KafkaTopic:  envOr("AGENTCRED_KAFKA_TOPIC", "agentcred.events"),
	}
	if brokers := os.Getenv("AGENTCRED_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
