package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"salesreport/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	reports   *ReportService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service reporting on reports
func NewHealthService(reports *ReportService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	info := contracts.GetVersionInfo()
	logger.Info("HealthService initialized",
		slog.String("version", info.Version),
		slog.String("build_time", info.BuildTime),
		slog.String("git_commit", info.GitCommit))

	return &HealthService{
		version:   info.Version,
		buildTime: info.BuildTime,
		gitCommit: info.GitCommit,
		reports:   reports,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}

	hs.logger.DebugContext(ctx, "HealthCheck: completed",
		slog.String("status", status.Status),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return status
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["reports"] = hs.checkReportHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":       hs.version,
		"report_format": contracts.ReportFormatVersion,
		"api_version":   contracts.APIVersion,
		"go_version":    runtime.Version(),
		"os":            runtime.GOOS,
		"arch":          runtime.GOARCH,
		"uptime":        time.Since(hs.startTime).Seconds(),
		"start_time":    hs.startTime.Format(time.RFC3339),
		"current_time":  time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" && hs.buildTime != "unknown" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" && hs.gitCommit != "unknown" {
		result["git_commit"] = hs.gitCommit
	}

	return result
}

func (hs *HealthService) checkReportHealth() ServiceHealth {
	if hs.reports == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "report service not initialized",
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("report service is healthy, %d cached datasets", hs.reports.cache.size()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}
