package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService reports liveness and build information
type HealthService struct {
	version    string
	sourceKind string
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus is the health check response
type HealthStatus struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	SourceKind string    `json:"source_kind"`
	Uptime     string    `json:"uptime"`
	GoVersion  string    `json:"go_version"`
}

// NewHealthService creates a health service
func NewHealthService(version, sourceKind string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:    version,
		sourceKind: sourceKind,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// Check returns the current health status
func (h *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Version:    h.version,
		SourceKind: h.sourceKind,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:  runtime.Version(),
	}
	h.logger.DebugContext(ctx, "health check", slog.String("status", status.Status))
	return status
}
