// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rijon63/fothebys-auction-system/internal/clock"
)

// Status represents a health check result.
type Status struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Checker is a named dependency probe, such as a store ping.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler provides the health endpoints.
type Handler struct {
	ready    atomic.Bool
	checkers []Checker
	clock    clock.Clock
	timeout  time.Duration
}

// NewHandler creates a health handler. It reports not ready until SetReady(true).
func NewHandler(clk clock.Clock, checkers ...Checker) *Handler {
	return &Handler{checkers: checkers, clock: clk, timeout: 5 * time.Second}
}

// SetReady marks the service as ready to receive traffic.
func (h *Handler) SetReady(ready bool) { h.ready.Store(ready) }

// Ready reports the flag last set by SetReady.
func (h *Handler) Ready() bool { return h.ready.Load() }

// Register mounts /healthz and /readyz on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.Liveness)
	r.GET("/readyz", h.Readiness)
}

func (h *Handler) now() string { return h.clock.Now().UTC().Format(time.RFC3339) }

// Liveness returns 200 while the process is alive.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, Status{Status: "ok", Timestamp: h.now()})
}

// Readiness returns 200 once the service is ready and every checker passes.
func (h *Handler) Readiness(c *gin.Context) {
	if !h.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, Status{Status: "not_ready", Timestamp: h.now()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.checkers))
	code, status := http.StatusOK, "ready"
	for _, chk := range h.checkers {
		if err := chk.Check(ctx); err != nil {
			checks[chk.Name] = err.Error()
			code, status = http.StatusServiceUnavailable, "not_ready"
			continue
		}
		checks[chk.Name] = "ok"
	}
	c.JSON(code, Status{Status: status, Checks: checks, Timestamp: h.now()})
}
