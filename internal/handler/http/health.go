// Package http holds the server wide HTTP plumbing of the blog: health
// probes, request metrics and the middleware chain. Resource handlers live
// in the subpackages.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"blog-platform/internal/handler/http/respond"
	"blog-platform/internal/usecase/mail"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"

	// poolBusyPercent degrades the database check.
	poolBusyPercent = 80.0
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string                 `json:"status"` // healthy, degraded or unhealthy
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Database is what the probes need from the pool.
// *circuitbreaker.DBCircuitBreaker satisfies it.
type Database interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

type MailHealth interface {
	ChannelHealth() []mail.ChannelHealthStatus
}

// HealthHandler reports the database and the mail channels. Only the
// database can make the probe fail; mail trouble degrades it.
type HealthHandler struct {
	DB      Database
	Mail    MailHealth
	Version string
}

// ServeHTTP ヘルスチェック
// @Summary      ヘルスチェック
// @Description  データベースとメールチャネルの状態を返します
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	db := CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	if h.DB != nil {
		db = h.checkDatabase(ctx)
	}
	checks := map[string]CheckStatus{"database": db}
	if h.Mail != nil {
		checks["mail"] = h.checkMail()
	}

	res := HealthResponse{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}
	code := http.StatusOK
	for _, c := range checks {
		if c.Status != statusHealthy {
			res.Status = statusDegraded
		}
	}
	if db.Status == statusUnhealthy {
		res.Status = statusUnhealthy
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, res)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		slog.Warn("health: database ping failed", slog.Any("error", err))
		return CheckStatus{Status: statusUnhealthy, Message: "database unreachable"}
	}
	return poolCheck(h.DB.Stats())
}

func poolCheck(stats sql.DBStats) CheckStatus {
	c := CheckStatus{
		Status: statusHealthy,
		Details: map[string]any{
			"max_open_connections": stats.MaxOpenConnections,
			"open_connections":     stats.OpenConnections,
			"in_use":               stats.InUse,
			"idle":                 stats.Idle,
			"wait_count":           stats.WaitCount,
			"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
		},
	}
	// 0 は無制限
	if stats.MaxOpenConnections == 0 {
		c.Status = statusDegraded
		c.Message = "connection pool max connections not configured"
		return c
	}
	busy := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	c.Details["utilization_percent"] = busy
	if busy >= poolBusyPercent {
		c.Status = statusDegraded
		c.Message = "connection pool utilization above 80%"
	}
	return c
}

// checkMail degrades when an enabled channel has an open circuit.
func (h *HealthHandler) checkMail() CheckStatus {
	c := CheckStatus{Status: statusHealthy, Details: map[string]any{}}
	for _, ch := range h.Mail.ChannelHealth() {
		c.Details[ch.Name] = ch
		if ch.Enabled && ch.CircuitState == "open" {
			c.Status = statusDegraded
		}
	}
	return c
}

// ReadyHandler is the readiness probe: 200 while the database answers.
type ReadyHandler struct {
	DB interface {
		PingContext(ctx context.Context) error
	}
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.DB == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	plain(w, "ready")
}

// LiveHandler is the liveness probe.
type LiveHandler struct{}

func (*LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	plain(w, "alive")
}

func plain(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("probe: failed to write response", slog.Any("error", err))
	}
}
