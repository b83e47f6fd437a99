package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"stockcount-api/internal/branch"
	"stockcount-api/internal/repository"
	"stockcount-api/pkg/response"
)

// DriveAuthorizer reports whether the Drive token is usable.
type DriveAuthorizer interface {
	IsAuthorized(ctx context.Context) bool
}

// AdminConfig lists what the admin handler reports on. Nil fields are
// reported as not configured.
type AdminConfig struct {
	Catalog         repository.CatalogRepository
	RelationalType  string
	Branches        []branch.Entry
	Drive           DriveAuthorizer
	RecordBackends  []string
	ImageStrategies []string
}

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	cfg       AdminConfig
	startTime time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cfg AdminConfig) *AdminHandler {
	return &AdminHandler{
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["record_backends"] = h.cfg.RecordBackends
	stats["image_strategies"] = h.cfg.ImageStrategies
	stats["branches"] = h.cfg.Branches

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":      float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":        float64(memStats.Sys) / 1024 / 1024,
		"heap_inuse_mb": float64(memStats.HeapInuse) / 1024 / 1024,
		"num_gc":        memStats.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}

	if h.cfg.Catalog != nil {
		dbStats, err := h.cfg.Catalog.GetStats(ctx)
		if err == nil {
			dbStats["status"] = "connected"
			dbStats["type"] = h.cfg.RelationalType
			stats["relational"] = dbStats
		} else {
			stats["relational"] = map[string]interface{}{
				"status": "error",
				"type":   h.cfg.RelationalType,
				"error":  err.Error(),
			}
		}
	} else {
		stats["relational"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	stats["drive"] = map[string]interface{}{
		"configured": h.cfg.Drive != nil,
		"authorized": h.cfg.Drive != nil && h.cfg.Drive.IsAuthorized(ctx),
	}

	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// DriveStatusResponse tells the browser whether photo uploads can reach Drive.
type DriveStatusResponse struct {
	Authorized bool   `json:"authorized"`
	Message    string `json:"message"`
}

// DriveStatus handles GET /drive_status
func (h *AdminHandler) DriveStatus(w http.ResponseWriter, r *http.Request) {
	resp := DriveStatusResponse{Message: "Google Drive is not configured"}
	if h.cfg.Drive != nil {
		if h.cfg.Drive.IsAuthorized(r.Context()) {
			resp = DriveStatusResponse{Authorized: true, Message: "Google Drive is authorized"}
		} else {
			resp.Message = "Google Drive authorization required"
		}
	}
	response.Raw(w, http.StatusOK, resp)
}
