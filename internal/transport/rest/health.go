package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/frahmantamala/plant-dashboard/internal"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// Check pings one dependency.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// Ping → just says service is up
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Health → checks every registered dependency
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: make(map[string]CheckEntry, len(names)),
	}
	for _, name := range names {
		start := time.Now()
		err := h.checks[name](ctx)

		entry := CheckEntry{
			Status:     HealthHealthy,
			CheckedAt:  time.Now(),
			DurationMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			entry.Status = HealthUnhealthy
			entry.Message = err.Error()
			resp.Status = HealthUnhealthy
		}
		resp.Components[name] = entry
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeHealthJSON(w, statusCode, resp)
}

func writeHealthJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
