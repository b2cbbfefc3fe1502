package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Run starts the ops server and the scan loop, then blocks until a
// shutdown signal arrives or the app context is cancelled. The exit
// path is always Shutdown, so a clean signal returns nil.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.Bool("dry-run", a.cfg.DryRun),
		zap.Duration("scan-interval", a.cfg.Scanner.Interval()),
		zap.Int64("position-size", a.cfg.Risk.PositionSize))

	a.start()
	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("kalshi-url", a.cfg.Kalshi.BaseURL))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}

// start launches the ops server and the scan loop. The server goes
// first so the probe routes answer before the first cycle's fetches
// begin.
func (a *App) start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.Start(); err != nil {
			a.logger.Error("http-server-error", zap.Error(err))
		}
	}()

	time.Sleep(100 * time.Millisecond)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.scheduler.Run(a.ctx)
	}()
}

// ScanOnce runs a single scan cycle without starting any component.
// Used by the scan subcommand.
func (a *App) ScanOnce(ctx context.Context) error {
	return a.scheduler.RunOnce(ctx)
}
