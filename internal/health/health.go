package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// Check is the outcome of one dependency probe.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Pinger is anything that can answer a liveness ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Pinger
	timeout   time.Duration
	startTime time.Time
}

func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{
		checkers:  make(map[string]Pinger),
		timeout:   timeout,
		startTime: time.Now(),
	}
}

func (h *Handler) Register(name string, p Pinger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = p
}

// Evaluate runs every registered probe and folds them into one status.
func (h *Handler) Evaluate(ctx context.Context) Response {
	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	checkers := make(map[string]Pinger, len(h.checkers))
	for k, v := range h.checkers {
		checkers[k] = v
	}
	h.mu.RUnlock()
	sort.Strings(names)

	overall := StatusHealthy
	checks := make(map[string]Check, len(names))
	for _, name := range names {
		check := h.run(ctx, name, checkers[name])
		checks[name] = check
		if check.Status == StatusUnhealthy {
			overall = StatusUnhealthy
		}
	}

	return Response{
		Status:        overall,
		Timestamp:     time.Now().UTC(),
		Checks:        checks,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}
}

func (h *Handler) run(ctx context.Context, name string, p Pinger) Check {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	check := Check{
		Name:       name,
		Status:     StatusHealthy,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
		logger.Warn("Health check failed", logger.Fields{
			"check": name,
			"error": err.Error(),
		})
	}
	return check
}

// Handle answers 200 when every probe passes, 503 otherwise.
func (h *Handler) Handle(c *gin.Context) {
	resp := h.Evaluate(c.Request.Context())

	status := http.StatusOK
	if resp.Status == StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
