package app

import (
	"context"
	"sync"

	"github.com/mselser95/kalshi-arb/internal/execution"
	"github.com/mselser95/kalshi-arb/internal/kalshi"
	"github.com/mselser95/kalshi-arb/internal/risk"
	"github.com/mselser95/kalshi-arb/internal/scheduler"
	"github.com/mselser95/kalshi-arb/internal/storage"
	"github.com/mselser95/kalshi-arb/internal/telegram"
	"github.com/mselser95/kalshi-arb/pkg/config"
	"github.com/mselser95/kalshi-arb/pkg/healthprobe"
	"github.com/mselser95/kalshi-arb/pkg/httpserver"
	"go.uber.org/zap"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	client        *kalshi.Client
	limiter       *risk.Limiter
	executor      *execution.Executor
	scheduler     *scheduler.Scheduler
	store         storage.Store
	alerter       *telegram.Alerter
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// Option overrides a wired component, letting tests point the app at a
// fake exchange or an in-memory sink.
type Option func(*options)

type options struct {
	client  *kalshi.Client
	store   storage.Store
	alerter *telegram.Alerter
}

// WithClient replaces the exchange client built from the config.
func WithClient(client *kalshi.Client) Option {
	return func(o *options) { o.client = client }
}

// WithStore replaces the storage sink built from the config.
func WithStore(store storage.Store) Option {
	return func(o *options) { o.store = store }
}

// WithAlerter replaces the Telegram alerter built from the environment.
func WithAlerter(alerter *telegram.Alerter) Option {
	return func(o *options) { o.alerter = alerter }
}
