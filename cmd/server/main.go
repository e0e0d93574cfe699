package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/clinicdesk/internal/adapter/http"
	"github.com/iho/clinicdesk/internal/adapter/http/handler"
	"github.com/iho/clinicdesk/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/clinicdesk/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/clinicdesk/internal/adapter/repository/redis"
	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/infrastructure/auth"
	"github.com/iho/clinicdesk/internal/infrastructure/config"
	"github.com/iho/clinicdesk/internal/infrastructure/eventpublisher"
	"github.com/iho/clinicdesk/internal/infrastructure/logger"
	"github.com/iho/clinicdesk/internal/infrastructure/metrics"
	"github.com/iho/clinicdesk/internal/infrastructure/postgres"
	"github.com/iho/clinicdesk/internal/infrastructure/redis"
	"github.com/iho/clinicdesk/internal/usecase"
)

const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		log.Info().Str("path", cfg.MigrationsPath).Msg("migrations applied")
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	m := metrics.New()

	deps := usecase.LedgerDeps{
		TxManager:    postgresRepo.NewTxManager(pool),
		Shifts:       postgresRepo.NewShiftRepository(pool),
		Transactions: postgresRepo.NewTransactionRepository(pool),
		Audit:        postgresRepo.NewAuditRepository(pool),
		Outbox:       postgresRepo.NewOutboxRepository(pool),
		Locker:       postgresRepo.NewAdvisoryLocker(cfg.LedgerAdvisoryLockKey),
		IDGen:        postgresRepo.NewULIDGenerator(),
		Metrics:      m,
		Timeout:      cfg.LedgerTxTimeout,
	}

	auditor := usecase.NewAuditor(deps)
	shiftUC := usecase.NewShiftUseCase(deps, auditor)
	paymentUC := usecase.NewPaymentUseCase(deps, auditor, postgresRepo.NewPatientRepository(pool), amountLimits(cfg))
	refundUC := usecase.NewRefundUseCase(deps, auditor, postgresRepo.NewVisitRepository(pool))
	reportUC := usecase.NewReportUseCase(deps.Shifts)

	routerCfg := httpAdapter.RouterConfig{
		ShiftHandler:       handler.NewShiftHandler(shiftUC, auditor),
		TransactionHandler: handler.NewTransactionHandler(paymentUC, refundUC),
		ReportHandler:      handler.NewReportHandler(reportUC),
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Logger:             &log,
		MetricsHandler:     promhttp.Handler(),
	}

	var redisPinger handler.Pinger
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		log.Info().Msg("connected to redis")

		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(client)
		redisPinger = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	} else {
		log.Warn().Msg("REDIS_URL not set, refund replay cache disabled")
	}
	routerCfg.HealthHandler = handler.NewHealthHandler(pool, redisPinger)

	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	}

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
		routerCfg.RateLimiter = limiter
		go sweepLimiters(ctx, limiter, log)
	}

	publisher, closePublisher, err := buildPublisher(cfg, &log)
	if err != nil {
		return err
	}
	defer closePublisher()

	relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: deps.Outbox,
		Publisher:  publisher,
		Logger:     &log,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
		Published:  m.EventsPublished,
	})
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("outbox relay stopped")
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-relayDone
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	<-relayDone

	log.Info().Msg("server stopped")
	return nil
}

func amountLimits(cfg *config.Config) domain.AmountLimits {
	return domain.AmountLimits{Min: cfg.LedgerMinAmount, Max: cfg.LedgerMaxAmount}
}

// buildPublisher picks the outbox sink. Without AMQP_URL events are only
// logged. The returned close func is always safe to call.
func buildPublisher(cfg *config.Config, log *zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	if cfg.AMQPURL == "" {
		return eventpublisher.NewLogPublisher(log), func() {}, nil
	}

	p, err := eventpublisher.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to amqp: %w", err)
	}
	log.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to amqp")

	return p, func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("closing amqp publisher")
		}
	}, nil
}

func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter, log zerolog.Logger) {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.CleanupLimiters(limiterIdleTTL); n > 0 {
				log.Debug().Int("removed", n).Msg("rate limiter sweep")
			}
		}
	}
}
