package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/hlog"
	"github.com/shirou/gopsutil/v3/process"
)

// HealthReport describes the running API process.
type HealthReport struct {
	Status        string  `json:"status"`
	PID           int32   `json:"pid"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	Goroutines    int     `json:"goroutines"`
}

// Health reports process resource usage. Stats that cannot be read are left
// at zero.
func Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := hlog.FromRequest(r)
	report := HealthReport{
		Status:     "ok",
		PID:        int32(os.Getpid()),
		Goroutines: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcessWithContext(ctx, report.PID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to inspect process")
		writeJSON(w, http.StatusOK, report)
		return
	}
	if created, err := proc.CreateTimeWithContext(ctx); err == nil {
		report.UptimeSeconds = int64(time.Since(time.UnixMilli(created)).Seconds())
	} else {
		logger.Warn().Err(err).Msg("Failed to read process start time")
	}
	if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
		report.RSSBytes = mem.RSS
	} else {
		logger.Warn().Err(err).Msg("Failed to read process memory")
	}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		report.CPUPercent = cpu
	} else {
		logger.Warn().Err(err).Msg("Failed to read process cpu")
	}
	writeJSON(w, http.StatusOK, report)
}
