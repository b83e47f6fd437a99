package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"stockcount-api/pkg/response"
)

// StartTime tracks when the server started for uptime calculation
var StartTime = time.Now()

// ReadyCheck checks one dependency. A nil error means ok.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler contains shared HTTP handlers and their dependencies.
type Handler struct {
	service string
	version string
	checks  []ReadyCheck
}

// New creates a new handler.
func New(service, version string, checks ...ReadyCheck) *Handler {
	return &Handler{service: service, version: version, checks: checks}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
	response.OK(w, resp)
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready     bool      `json:"ready"`
	Timestamp time.Time `json:"timestamp"`
	Checks    []Check   `json:"checks"`
}

// Check represents an individual readiness check.
type Check struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) runChecks(ctx context.Context) ([]Check, bool) {
	checks := []Check{{Name: "api", Status: "ok"}}
	allReady := true

	for _, rc := range h.checks {
		cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rc.Check(cctx)
		cancel()

		c := Check{Name: rc.Name, Status: "ok"}
		if err != nil {
			c.Status = "error"
			c.Error = err.Error()
			allReady = false
		}
		checks = append(checks, c)
	}
	return checks, allReady
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	checks, allReady := h.runChecks(r.Context())

	resp := ReadyResponse{
		Ready:     allReady,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}

	status := http.StatusOK
	if !allReady {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, resp)
}

// StatusResponse represents the unified status response for uptime monitoring
type StatusResponse struct {
	Service       string            `json:"service"`
	Status        string            `json:"status"`
	Timestamp     string            `json:"timestamp"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	PingMS        int64             `json:"ping_ms"`
	MemoryMB      float64           `json:"memory_mb"`
	Checks        map[string]string `json:"checks"`
}

// Status handles GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	requestStart := time.Now()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	memoryMB := float64(memStats.Alloc) / 1024 / 1024

	checks, allReady := h.runChecks(r.Context())
	summary := make(map[string]string, len(checks))
	for _, c := range checks {
		summary[c.Name] = c.Status
	}

	status := "ok"
	if !allReady {
		status = "degraded"
	}

	resp := StatusResponse{
		Service:       h.service,
		Status:        status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(StartTime).Seconds()),
		PingMS:        time.Since(requestStart).Milliseconds(),
		MemoryMB:      float64(int(memoryMB*100)) / 100,
		Checks:        summary,
	}

	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	response.OK(w, resp)
}
