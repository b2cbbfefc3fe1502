package app

import (
	"context"
	"fmt"

	"github.com/mselser95/kalshi-arb/internal/detector"
	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/internal/risk"
	"github.com/mselser95/kalshi-arb/internal/scheduler"
	"github.com/mselser95/kalshi-arb/internal/storage"
	"github.com/mselser95/kalshi-arb/internal/telegram"
	"github.com/mselser95/kalshi-arb/pkg/cache"
	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/mselser95/kalshi-arb/pkg/healthprobe"
	"github.com/mselser95/kalshi-arb/pkg/httpserver"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Initialize components
	healthChecker := setupHealthChecker()

	client := o.client
	if client == nil {
		var err error
		client, err = setupClient(cfg, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("setup client: %w", err)
		}
	}

	arbDetector := setupDetector(cfg, logger)
	limiter := setupLimiter(cfg, logger)

	store := o.store
	if store == nil {
		var err error
		store, err = setupStorage(cfg, logger)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("setup storage: %w", err)
		}
	}

	alerter := o.alerter
	if alerter == nil {
		alerter = setupAlerter(logger)
	}

	executor, err := setupExecutor(cfg, logger, client)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup executor: %w", err)
	}

	// Setup series catalog cache
	catalog, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	sched, err := setupScheduler(cfg, logger, client, arbDetector, executor, limiter, store, alerter, catalog)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup scheduler: %w", err)
	}

	// Setup HTTP server (needs limiter and scheduler for the status route)
	httpServer := setupHTTPServer(cfg, logger, healthChecker, limiter, sched)

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		client:        client,
		limiter:       limiter,
		executor:      executor,
		scheduler:     sched,
		store:         store,
		alerter:       alerter,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker() *healthprobe.HealthChecker {
	return healthprobe.New()
}

func setupClient(cfg *config.Config, logger *zap.Logger) (*kalshi.Client, error) {
	signer, err := kalshi.NewSigner(cfg.Kalshi.RSAKeyPath, cfg.APIKeyID)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	return kalshi.NewClient(&kalshi.ClientConfig{
		BaseURL:   cfg.Kalshi.BaseURL,
		Signer:    signer,
		ReadDelay: cfg.Scanner.ScanDelay(),
		Logger:    logger,
	})
}

func setupDetector(cfg *config.Config, logger *zap.Logger) *detector.Detector {
	return detector.New(detector.Config{
		MinNetProfitCents: cfg.Risk.MinNetProfitCents,
		MinROIPct:         cfg.Risk.MinROIPct,
		PositionSize:      cfg.Risk.PositionSize,
		Logger:            logger,
	})
}

func setupLimiter(cfg *config.Config, logger *zap.Logger) *risk.Limiter {
	// The configured cap is advisory; the limiter enforces its own.
	logger.Info("risk-limits",
		zap.Int("max-open-positions-advisory", cfg.Risk.MaxOpenPositions),
		zap.Int("max-open-arbs", risk.MaxOpenArbs),
		zap.Int("max-daily-loss-cents", risk.MaxDailyLossCents),
		zap.Int("max-daily-orders", risk.MaxDailyOrders))

	return risk.New(risk.Config{
		AdvisoryMaxOpenPositions: cfg.Risk.MaxOpenPositions,
		Logger:                   logger,
	})
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	fileStore, err := storage.NewFileStore(&storage.FileConfig{
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create file store: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return fileStore, nil
	}

	pgStore, err := storage.NewPostgresStore(&storage.PostgresConfig{
		URL:    cfg.DatabaseURL,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create postgres store: %w", err)
	}

	return storage.NewMultiStore(logger, fileStore, pgStore), nil
}

func setupAlerter(logger *zap.Logger) *telegram.Alerter {
	alerter := telegram.NewFromEnv(logger)
	if !alerter.Enabled() {
		logger.Info("telegram-alerts-disabled",
			zap.String("note", "TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set"))
	}
	return alerter
}

func setupExecutor(cfg *config.Config, logger *zap.Logger, client *kalshi.Client) (*execution.Executor, error) {
	// Don't create executor in dry-run mode
	if cfg.DryRun {
		logger.Info("executor-disabled-dry-run-mode",
			zap.String("note", "opportunities will be detected and logged only"))
		return nil, nil
	}

	return execution.New(&execution.Config{
		Client:       client,
		PositionSize: cfg.Risk.PositionSize,
		Logger:       logger,
	})
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000, // 10x expected max items (the catalog is one entry)
		MaxCost:     1 << 20,
		BufferItems: 64,
		Logger:      logger,
	})
}

func setupScheduler(
	cfg *config.Config,
	logger *zap.Logger,
	client *kalshi.Client,
	arbDetector *detector.Detector,
	executor *execution.Executor,
	limiter *risk.Limiter,
	store storage.Store,
	alerter *telegram.Alerter,
	catalog cache.Cache,
) (*scheduler.Scheduler, error) {
	return scheduler.New(scheduler.Config{
		Client:         client,
		Detector:       arbDetector,
		Executor:       executor,
		Limiter:        limiter,
		Store:          store,
		Alerter:        alerter,
		Catalog:        catalog,
		Interval:       cfg.Scanner.Interval(),
		SeriesFilter:   cfg.Scanner.SeriesFilter,
		MinBrackets:    cfg.Scanner.MinBrackets,
		MaxBrackets:    cfg.Scanner.MaxBrackets,
		SeriesCacheTTL: cfg.Scanner.SeriesCacheTTL(),
		DryRun:         cfg.DryRun,
		Logger:         logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	limiter *risk.Limiter,
	sched *scheduler.Scheduler,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Limiter:       limiter,
		Scheduler:     sched,
		DryRun:        cfg.DryRun,
	})
}
