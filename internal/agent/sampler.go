// Package agent implements the reference node daemon the panel connects to:
// a gopsutil-backed resource sampler and a websocket endpoint that answers
// stats requests with the panel's wire payload.
package agent

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"srvpanel/internal/models"
	"srvpanel/internal/utils"
)

const defaultSampleInterval = 5 * time.Second

// Sampler periodically refreshes host resource usage. The latest sample is
// served to any number of websocket sessions; uptime counts from Start.
type Sampler struct {
	rootPath string
	interval time.Duration
	logger   *utils.Logger

	mu           sync.RWMutex
	latest       models.ResourceSnapshot
	startedAt    time.Time
	lastCPUTotal float64
	lastCPUIdle  float64

	stopMu sync.Mutex
	stop   chan struct{}
	wg     sync.WaitGroup
}

// NewSampler builds a sampler that measures disk usage under rootPath.
// A zero interval selects the default.
func NewSampler(rootPath string, interval time.Duration, logger *utils.Logger) *Sampler {
	if rootPath == "" {
		rootPath = "/"
	}
	if interval <= 0 {
		interval = defaultSampleInterval
	}
	return &Sampler{
		rootPath: rootPath,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the background refresh loop. Calling Start twice is a no-op.
func (s *Sampler) Start() {
	s.stopMu.Lock()
	if s.stop != nil {
		s.stopMu.Unlock()
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	s.stopMu.Unlock()

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		ctx := context.Background()
		s.refresh(ctx)
		for {
			select {
			case <-ticker.C:
				s.refresh(ctx)
			case <-stop:
				return
			}
		}
	}()
}

// Stop halts the refresh loop and waits for shutdown.
func (s *Sampler) Stop() {
	s.stopMu.Lock()
	stop := s.stop
	s.stop = nil
	s.stopMu.Unlock()
	if stop != nil {
		close(stop)
	}
	s.wg.Wait()
}

// Payload returns the current wire payload for one stats response.
func (s *Sampler) Payload() models.StatsPayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uptime := uint64(0)
	if !s.startedAt.IsZero() {
		uptime = uint64(time.Since(s.startedAt).Milliseconds())
	}
	return models.StatsPayload{
		MemoryBytes: s.latest.MemoryBytes,
		CPUAbsolute: s.latest.CPUPercent,
		DiskBytes:   s.latest.DiskBytes,
		UptimeMS:    uptime,
	}
}

// Interval returns the sampling period, which doubles as the streaming
// cadence for connected sessions.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Status reports the lifecycle tag the agent advertises on new sessions.
func (s *Sampler) Status() models.Status {
	s.stopMu.Lock()
	defer s.stopMu.Unlock()
	if s.stop != nil {
		return models.StatusRunning
	}
	return models.StatusOffline
}

func (s *Sampler) refresh(ctx context.Context) {
	timesStats, err := cpu.TimesWithContext(ctx, false)
	if err != nil || len(timesStats) == 0 {
		if s.logger != nil {
			s.logger.Writef("cpu sample failed: %v", err)
		}
		return
	}
	total := cpuTotal(timesStats[0])
	idle := timesStats[0].Idle + timesStats[0].Iowait

	var memUsed uint64
	if memoryStats, _ := mem.VirtualMemoryWithContext(ctx); memoryStats != nil {
		memUsed = memoryStats.Used
	}
	var diskUsed uint64
	if diskStats, _ := disk.UsageWithContext(ctx, s.rootPath); diskStats != nil {
		diskUsed = diskStats.Used
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	deltaTotal := total - s.lastCPUTotal
	deltaIdle := idle - s.lastCPUIdle
	hasPrev := s.lastCPUTotal > 0
	s.lastCPUTotal = total
	s.lastCPUIdle = idle

	var cpuPercent float64
	if hasPrev && deltaTotal > 0 {
		used := deltaTotal - deltaIdle
		if used < 0 {
			used = 0
		}
		cpuPercent = clampFloat((used/deltaTotal)*100, 0, 100)
	}

	s.latest = models.ResourceSnapshot{
		MemoryBytes: memUsed,
		CPUPercent:  cpuPercent,
		DiskBytes:   diskUsed,
	}
}

func cpuTotal(stat cpu.TimesStat) float64 {
	return stat.User + stat.System + stat.Nice + stat.Idle + stat.Iowait + stat.Irq + stat.Softirq + stat.Steal + stat.Guest + stat.GuestNice
}

func clampFloat(val, min, max float64) float64 {
	if math.IsNaN(val) {
		return min
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
