package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// ClientCounter reports the number of connected push clients
type ClientCounter interface {
	ClientCount() int
}

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string
	BuildTime string
	BuildID   string
}

// HealthService provides health check functionality
type HealthService struct {
	build     BuildInfo
	workspace *WorkspaceService
	clients   ClientCounter
	outputDir string
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

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	WebSocketClients int     `json:"websocket_clients"`
	Busy             bool    `json:"busy"`
	Loaded           bool    `json:"loaded"`
	Rows             int     `json:"rows"`
	Columns          int     `json:"columns"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a health service. clients and workspace may be nil
// in tests; outputDir is checked for existence when set.
func NewHealthService(build BuildInfo, workspace *WorkspaceService, clients ClientCounter, outputDir string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", build.Version),
		slog.String("build_time", build.BuildTime),
		slog.String("build_id", build.BuildID))

	return &HealthService{
		build:     build,
		workspace: workspace,
		clients:   clients,
		outputDir: outputDir,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
		Services:  make(map[string]interface{}),
	}

	status.Services["websocket"] = hs.checkWebSocketHealth()
	status.Services["workspace"] = hs.checkWorkspaceHealth()
	status.Services["output"] = hs.checkOutputHealth()

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.build.Version,
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
		"version":      hs.build.Version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.build.BuildTime != "" {
		result["build_time"] = hs.build.BuildTime
	}
	if hs.build.BuildID != "" {
		result["build_id"] = hs.build.BuildID
	}
	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.clients != nil {
		stats.WebSocketClients = hs.clients.ClientCount()
	}
	if hs.workspace != nil {
		stats.Busy = hs.workspace.Busy()
		if preview, err := hs.workspace.Preview(0); err == nil {
			stats.Loaded = true
			stats.Rows = preview.Rows
			stats.Columns = len(preview.Columns)
		}
	}
	return stats
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "websocket hub not initialized",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkWorkspaceHealth() ServiceHealth {
	if hs.workspace == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "workspace not initialized",
		}
	}
	msg := "idle"
	if hs.workspace.Busy() {
		msg = "operation running"
	}
	return ServiceHealth{Status: "ready", Message: msg}
}

// checkOutputHealth verifies the default output directory, when one is set
func (hs *HealthService) checkOutputHealth() ServiceHealth {
	if hs.outputDir == "" {
		return ServiceHealth{Status: "ready", Message: "no default output directory"}
	}
	info, err := os.Stat(hs.outputDir)
	if os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Output directory not found: %s", hs.outputDir),
		}
	}
	if err != nil || !info.IsDir() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Output path is not a usable directory: %s", hs.outputDir),
		}
	}
	return ServiceHealth{Status: "ready", Message: "Output directory is available"}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     hs.SystemStats(ctx),
	}
}
