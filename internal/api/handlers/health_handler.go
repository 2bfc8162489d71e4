package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/focoshop/focoshop-be/internal/monitoring"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HostStatsSource provides the latest host resource snapshot.
type HostStatsSource interface {
	Latest(ctx context.Context) monitoring.HostStats
}

// HealthHandler reports liveness, database reachability and host stats.
type HealthHandler struct {
	db      Pinger
	stats   HostStatsSource
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, stats HostStatsSource) *HealthHandler {
	return &HealthHandler{db: db, stats: stats, started: time.Now()}
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status            string  `json:"status"`
	Database          string  `json:"database"`
	UptimeSeconds     int64   `json:"uptime_seconds"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	UploadDiskFree    uint64  `json:"upload_disk_free_bytes"`
}

// Get answers 200 when the database responds and 503 otherwise.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:        "ok",
		Database:      "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	status := http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if h.stats != nil {
		stats := h.stats.Latest(ctx)
		resp.MemoryUsedPercent = stats.MemoryUsedPercent
		resp.UploadDiskFree = stats.DiskFreeBytes
	}
	respondJSON(w, r, status, resp)
}

// Root returns the API banner handler.
func Root(baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, r, http.StatusOK, map[string]string{
			"status": "Backend funcionando",
			"ruta":   baseURL,
		})
	}
}
