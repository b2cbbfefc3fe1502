package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds the drain of in-flight HTTP requests and the
// final sink flush.
const shutdownTimeout = 10 * time.Second

// Shutdown stops the application. Readiness drops first so probes stop
// routing to the process, then the scan loop is cancelled and drained
// before its sinks are closed. Always returns nil: shutdown must run to
// the end, so component errors are logged rather than propagated.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// The scan loop may be mid-cycle; its sinks stay open until it drains.
	a.wg.Wait()

	if err := a.store.Close(); err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	// Closing counters are the operator's handle on what is still open;
	// open arbs survive the process and settle on the exchange.
	status := a.limiter.Status()
	a.logger.Info("application-shutdown-complete",
		zap.Int("open-arbs", status.OpenArbs),
		zap.Int64("daily-pnl-cents", status.DailyPnLCents),
		zap.Int("daily-orders", status.DailyOrders))

	return nil
}
