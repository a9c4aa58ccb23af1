package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/yieldwise/internal/cache"
	"github.com/aristath/yieldwise/internal/database"
	"github.com/aristath/yieldwise/internal/di"
	"github.com/aristath/yieldwise/internal/scheduler"
)

// SystemHandlers serves process and backend status
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	container *di.Container
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, container *di.Container) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		container: container,
		startedAt: time.Now(),
	}
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string                `json:"status"` // "healthy" or "degraded"
	StartedAt     string                `json:"started_at"`
	Uptime        string                `json:"uptime"`
	Goroutines    int                   `json:"goroutines"`
	CPUPercent    float64               `json:"cpu_percent"`
	MemoryPercent float64               `json:"memory_percent"`
	DiskFree      string                `json:"disk_free,omitempty"`
	PropertyCount int                   `json:"property_count"`
	Cache         CacheStatus           `json:"cache"`
	Databases     []DatabaseStatus      `json:"databases"`
	Jobs          []scheduler.JobStatus `json:"jobs"`
}

// CacheStatus describes the analysis cache backend
type CacheStatus struct {
	Backend      string      `json:"backend"`
	BreakerState string      `json:"breaker_state"`
	Stats        cache.Stats `json:"stats"`
}

// DatabaseStatus describes one SQLite database
type DatabaseStatus struct {
	Name    string `json:"name"`
	Size    string `json:"size"`
	WALSize string `json:"wal_size"`
	Pages   int64  `json:"pages"`
	Error   string `json:"error,omitempty"`
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	response := h.GetSystemStatusSnapshot(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// GetSystemStatusSnapshot collects the current status. Failing probes degrade the status instead of failing the call.
func (h *SystemHandlers) GetSystemStatusSnapshot(ctx context.Context) SystemStatusResponse {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		StartedAt:     h.startedAt.UTC().Format(time.RFC3339),
		Uptime:        humanize.RelTime(h.startedAt, time.Now(), "", ""),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     []DatabaseStatus{},
		Jobs:          []scheduler.JobStatus{},
	}

	if usage, err := disk.UsageWithContext(ctx, h.dataDir); err == nil {
		response.DiskFree = humanize.Bytes(usage.Free)
	} else {
		h.log.Warn().Err(err).Str("dir", h.dataDir).Msg("Failed to get disk usage")
	}

	if h.container == nil {
		response.Status = "degraded"
		return response
	}

	if h.container.PropertyRepo != nil {
		count, err := h.container.PropertyRepo.Count(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to count properties")
			response.Status = "degraded"
		}
		response.PropertyCount = count
	}

	if h.container.AnalysisService != nil {
		response.Cache = CacheStatus{
			Backend: h.container.CacheBackend,
			Stats:   h.container.AnalysisService.CacheStats(ctx),
		}
		if h.container.CacheStore != nil {
			response.Cache.BreakerState = h.container.CacheStore.State()
		}
		if !response.Cache.Stats.Connected {
			response.Status = "degraded"
		}
	}

	for _, db := range []*database.DB{h.container.CatalogDB, h.container.CacheDB} {
		if db == nil {
			continue
		}
		status := h.databaseStatus(ctx, db)
		if status.Error != "" {
			response.Status = "degraded"
		}
		response.Databases = append(response.Databases, status)
	}

	if h.container.Scheduler != nil {
		response.Jobs = h.container.Scheduler.Status()
	}

	return response
}

// JobsStatusResponse lists the background jobs
type JobsStatusResponse struct {
	TotalJobs int                   `json:"total_jobs"`
	Jobs      []scheduler.JobStatus `json:"jobs"`
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []scheduler.JobStatus{}
	if h.container != nil && h.container.Scheduler != nil {
		jobs = h.container.Scheduler.Status()
	}

	h.writeJSON(w, http.StatusOK, JobsStatusResponse{TotalJobs: len(jobs), Jobs: jobs})
}

// HandleTriggerJob handles POST /api/system/jobs/{name} by running the job
// immediately and reporting its outcome.
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if h.container == nil || h.container.Scheduler == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": "Scheduler not initialized",
		})
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job run triggered")

	err := h.container.Scheduler.RunNow(r.Context(), name)
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		h.writeJSON(w, http.StatusNotFound, map[string]string{
			"status":  "error",
			"message": "Unknown job " + name,
		})
	case err != nil:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
	default:
		h.writeJSON(w, http.StatusOK, map[string]string{
			"status":  "success",
			"message": "Job " + name + " completed",
		})
	}
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) databaseStatus(ctx context.Context, db *database.DB) DatabaseStatus {
	status := DatabaseStatus{Name: db.Name()}

	stats, err := db.GetStats(ctx)
	if err != nil {
		h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
		status.Error = err.Error()
		return status
	}

	status.Size = humanize.Bytes(uint64(stats.SizeBytes))
	status.WALSize = humanize.Bytes(uint64(stats.WALSizeBytes))
	status.Pages = stats.PageCount
	return status
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the call fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
