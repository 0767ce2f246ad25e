package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"agentcred/internal/access"
	accesshandler "agentcred/internal/access/handler"
	"agentcred/internal/content"
	contenthandler "agentcred/internal/content/handler"
	"agentcred/internal/events"
	eventshandler "agentcred/internal/events/handler"
	"agentcred/internal/jwtauth"
	jwtauthhandler "agentcred/internal/jwtauth/handler"
	"agentcred/internal/orchestrator"
	orchestratorhandler "agentcred/internal/orchestrator/handler"
	"agentcred/internal/platform/config"
	"agentcred/internal/platform/httpserver"
	"agentcred/internal/platform/logger"
	"agentcred/internal/platform/metrics"
	"agentcred/internal/platform/postgres"
	platformredis "agentcred/internal/platform/redis"
	"agentcred/internal/registry"
	registryhandler "agentcred/internal/registry/handler"
	"agentcred/internal/reputation"
	reputationhandler "agentcred/internal/reputation/handler"
	"agentcred/internal/stake"
	stakehandler "agentcred/internal/stake/handler"
	httptransport "agentcred/internal/transport/http"
	"agentcred/internal/verdict"
	id "agentcred/pkg/domain"
)

// main wires the ledgers, the audit pipeline, and the HTTP surface. Business
// logic lives in the internal services; main only selects backends from
// configuration and manages the process lifecycle.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		log.Info("postgres connected")
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("redis connected")
	}

	publisher := events.NewPublisher(eventStore(db, redisClient), log, events.WithMetrics(m))

	var sinks []events.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
		log.Info("kafka sink attached", "topic", cfg.KafkaTopic)
	}

	authz := access.NewService(access.NewInMemoryStore(), id.Identity(cfg.AdminIdentity))
	orchestratorID := id.Identity(cfg.OrchestratorIdentity)
	if err := authz.Grant(ctx, id.Identity(cfg.AdminIdentity), orchestratorID, id.RoleAuditor); err != nil {
		return err
	}

	reg := registry.NewService()
	stakeSvc := stake.NewService(stakeStore(db), authz, publisher, id.Identity(cfg.TreasuryAccount), log,
		stake.WithMetrics(m),
		stake.WithOwnerRegistry(reg),
	)
	repSvc := reputation.NewService(reputationStore(db), authz, publisher, log,
		reputation.WithMetrics(m))
	contentSvc := content.NewService(contentStore(db), authz, publisher, stakeSvc, log,
		content.WithMetrics(m))

	orchOpts := []orchestrator.ServiceOption{
		orchestrator.WithRegistry(reg),
		orchestrator.WithMetrics(m),
	}
	if cfg.Verifier.URL != "" {
		orchOpts = append(orchOpts, orchestrator.WithVerifier(verdict.NewClient(cfg.Verifier.URL, cfg.Verifier.Timeout)))
		log.Info("external verifier configured", "url", cfg.Verifier.URL)
	}
	fallback := verdict.NewFallback(cfg.Fallback.MarkerToken, cfg.Fallback.FailScore,
		cfg.Fallback.PassScoreMin, cfg.Fallback.PassScoreMax)
	orchSvc := orchestrator.NewService(contentSvc, repSvc, stakeSvc, fallback, orchestratorID, log, orchOpts...)

	tokens := jwtauth.New(cfg.JWTSigningKey, "agentcred")

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:         log,
		TokenValidator: tokens,
		RequestTimeout: cfg.RequestTimeout,
		Open: []httptransport.Registrar{
			jwtauthhandler.New(tokens, log),
		},
		Protected: []httptransport.Registrar{
			stakehandler.New(stakeSvc, log),
			contenthandler.New(contentSvc, log),
			reputationhandler.New(repSvc, log),
			eventshandler.New(publisher, log),
			registryhandler.New(reg, log),
			orchestratorhandler.New(orchSvc, log),
			accesshandler.New(authz, stakeSvc, reg, log),
		},
		HealthChecks: healthChecks(db, redisClient),
	})

	srv := httpserver.New(cfg.Addr, router, cfg.RequestTimeout)
	worker := events.NewWorker(publisher.Inbox(), sinks, log, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting agentcred engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func eventStore(db *sql.DB, redisClient *platformredis.Client) events.Store {
	switch {
	case db != nil:
		return events.NewPostgresStore(db)
	case redisClient != nil:
		return events.NewRedisStore(redisClient.Client)
	default:
		return events.NewInMemoryStore()
	}
}

func stakeStore(db *sql.DB) stake.Store {
	if db != nil {
		return stake.NewPostgresStore(db)
	}
	return stake.NewInMemoryStore()
}

func reputationStore(db *sql.DB) reputation.Store {
	if db != nil {
		return reputation.NewPostgresStore(db)
	}
	return reputation.NewInMemoryStore()
}

func contentStore(db *sql.DB) content.Store {
	if db != nil {
		return content.NewPostgresStore(db)
	}
	return content.NewInMemoryStore()
}

func healthChecks(db *sql.DB, redisClient *platformredis.Client) map[string]httptransport.Health {
	checks := map[string]httptransport.Health{}
	if db != nil {
		checks["postgres"] = db.Ping
	}
	if redisClient != nil {
		checks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		}
	}
	return checks
}
