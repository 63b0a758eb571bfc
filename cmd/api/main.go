package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/job-board/internal/api/http"
	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/observability"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/repository"
	"github.com/spec-kit/job-board/internal/service"
	"github.com/spec-kit/job-board/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	deps := httptransport.AppDependencies{
		Config: *cfg,
		Logger: logger,
	}

	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		pool := pg.PoolHandle()
		deps.Jobs = repository.NewJobRepository(pool)
		deps.Acceptances = repository.NewAcceptanceRepository(pool)
		deps.Accounts = repository.NewAccountRepository(pool)
		deps.Profiles = repository.NewProfileRepository(pool)
	} else {
		store := repository.NewMemoryStore()
		deps.Jobs = store.Jobs()
		deps.Acceptances = store.Acceptances()
		deps.Accounts = store.Accounts()
		deps.Profiles = store.Profiles()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()
	if redis.Enabled() {
		deps.Revocations = auth.NewRedisRevocationList(redis.Client)
	}

	if cfg.OAuth.Enabled() {
		deps.Google = auth.NewGoogleExchanger(cfg.OAuth, nil, "")
	} else {
		logger.Warn("GOOGLE_CLIENT_ID not provided; federated sign-in disabled")
	}

	var publisher *events.AMQPPublisher
	if cfg.Broker.AMQPURL != "" {
		publisher, err = events.DialAMQP(cfg.Broker.AMQPURL, cfg.Broker.Exchange, logger)
		if err != nil {
			logger.Fatal("failed to connect broker", zap.Error(err))
		}
		defer publisher.Close() //nolint:errcheck
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Registry = registry

	deps.Dispatcher = events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(deps.Dispatcher, service.NewNotificationService(deps.Dispatcher, logger), publisher, logger)

	deps.Health = map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	}

	app := httptransport.NewApp(deps)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
