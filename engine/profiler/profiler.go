package profiler

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Profiler tracks update rate and memory statistics for performance monitoring.
// Outputs stats to the logger at a configurable interval.
type Profiler struct {
	logger *logrus.Logger
	label  string

	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// Stats is one profiler sample.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// NewProfiler creates a new Profiler that logs under label.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: the logger samples are written to, or nil for the standard logger
//   - label: the name of the loop being measured, e.g. "xr" or "paced"
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *logrus.Logger, label string) *Profiler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Profiler{
		logger:         logger,
		label:          label,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// SetInterval changes how often samples are logged.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// SetLabel renames the measured loop, e.g. when pacing moves from the engine to the XR device.
// The frame count restarts.
func (p *Profiler) SetLabel(label string) {
	if p.label == label {
		return
	}
	p.label = label
	p.frameCount = 0
	p.lastTime = time.Now()
}

// Tick should be called once per update to track update timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - Stats: the sample, valid when the bool is true
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() (Stats, bool) {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.logger.WithFields(logrus.Fields{
		"loop":          p.label,
		"fps":           s.FPS,
		"heap_mb":       s.HeapMB,
		"alloc_rate_mb": s.AllocRateMB,
		"gc":            s.GCCount,
		"gc_last_us":    s.LastPauseUs,
		"gc_max_us":     s.MaxPauseUs,
		"sys_mb":        s.SysMB,
	}).Info("profiler")

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}
