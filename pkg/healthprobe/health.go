// Package healthprobe serves the liveness and readiness state of the
// process. Liveness is unconditional; readiness follows the application
// lifecycle.
package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	statusHealthy  = "healthy"
	statusReady    = "ready"
	statusNotReady = "not_ready"
)

// HealthChecker tracks process start time and readiness.
type HealthChecker struct {
	startedAt time.Time
	ready     atomic.Bool
}

// New creates a health checker that reports not ready.
func New() *HealthChecker {
	return &HealthChecker{startedAt: time.Now()}
}

// SetReady flips the readiness gate. The application sets it once its
// components are running and clears it when shutdown begins.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Response is the body of both probe endpoints.
type Response struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Health handles liveness. It returns 200 for as long as the process can
// serve requests at all.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.respond(w, http.StatusOK, statusHealthy)
	}
}

// Ready handles readiness: 200 once the application is serving, 503
// before that and again during shutdown.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !h.ready.Load() {
			h.respond(w, http.StatusServiceUnavailable, statusNotReady)
			return
		}
		h.respond(w, http.StatusOK, statusReady)
	}
}

func (h *HealthChecker) respond(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{
		Status: status,
		Uptime: time.Since(h.startedAt).Round(time.Millisecond).String(),
	})
}
