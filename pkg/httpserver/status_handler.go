package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/mselser95/kalshi-arb/internal/risk"
	"github.com/mselser95/kalshi-arb/internal/scheduler"
	"go.uber.org/zap"
)

// StatusHandler handles HTTP requests for the scanner status snapshot.
type StatusHandler struct {
	limiter   *risk.Limiter
	scheduler *scheduler.Scheduler
	dryRun    bool
	logger    *zap.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(limiter *risk.Limiter, sched *scheduler.Scheduler, dryRun bool, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		limiter:   limiter,
		scheduler: sched,
		dryRun:    dryRun,
		logger:    logger,
	}
}

// StatusResponse represents the HTTP response for the status snapshot.
// LastCycle is null until the first scan cycle completes.
type StatusResponse struct {
	DryRun    bool                  `json:"dry_run"`
	Risk      risk.Status           `json:"risk"`
	LastCycle *scheduler.CycleStats `json:"last_cycle"`
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	response := StatusResponse{
		DryRun: h.dryRun,
		Risk:   h.limiter.Status(),
	}

	if last, ok := h.scheduler.LastCycle(); ok {
		response.LastCycle = &last
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}
