package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats is a snapshot of host resource usage.
type HostStats struct {
	MemoryUsedPercent float64   `json:"memory_used_percent"`
	DiskFreeBytes     uint64    `json:"upload_disk_free_bytes"`
	SampledAt         time.Time `json:"sampled_at"`
}

// StatUpdater samples host memory and upload-disk usage on a ticker and keeps
// the latest snapshot for the health endpoint.
type StatUpdater struct {
	uploadDir string
	interval  time.Duration
	done      chan struct{}
	stopOnce  sync.Once

	mu     sync.RWMutex
	latest HostStats
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(uploadDir string, interval time.Duration) *StatUpdater {
	return &StatUpdater{
		uploadDir: uploadDir,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

// Run starts the periodic updates. It returns after Stop.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")
	ticker := time.NewTicker(su.interval)
	defer ticker.Stop()

	// Run once immediately on start
	su.Update(context.Background())

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-ticker.C:
			su.Update(context.Background())
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.stopOnce.Do(func() { close(su.done) })
}

// Update takes a fresh sample. Failed probes keep their previous values.
func (su *StatUpdater) Update(ctx context.Context) HostStats {
	su.mu.RLock()
	stats := su.latest
	su.mu.RUnlock()

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not read memory stats")
	} else {
		stats.MemoryUsedPercent = vm.UsedPercent
	}

	if usage, err := disk.UsageWithContext(ctx, su.uploadDir); err != nil {
		log.Warn().Err(err).Str("path", su.uploadDir).Msg("StatUpdater: Could not read disk usage")
	} else {
		stats.DiskFreeBytes = usage.Free
	}
	stats.SampledAt = time.Now()

	su.mu.Lock()
	su.latest = stats
	su.mu.Unlock()
	return stats
}

// Latest returns the most recent snapshot, sampling once if none exists yet.
func (su *StatUpdater) Latest(ctx context.Context) HostStats {
	su.mu.RLock()
	stats := su.latest
	su.mu.RUnlock()
	if stats.SampledAt.IsZero() {
		return su.Update(ctx)
	}
	return stats
}
