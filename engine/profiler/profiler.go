// Package profiler aggregates per-frame ray tracer reports and logs them at an interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/raytracer"
)

var logger = log.New("profiler")

// Stats are frame totals over a window or over the whole run.
type Stats struct {
	Frames        int
	Dispatched    int
	Skipped       int
	Failed        int
	Uploads       int
	BytesUploaded uint64
	StaleViews    int
	Extract       time.Duration
	Stage         time.Duration
	Marshal       time.Duration
	Bind          time.Duration
	Dispatch      time.Duration
}

// add folds one report into the totals.
func (s *Stats) add(r raytracer.FrameReport, err error) {
	s.Frames++
	if err != nil {
		s.Failed++
	} else if r.Dispatched {
		s.Dispatched++
	} else {
		s.Skipped++
	}
	s.Uploads += r.Uploads
	s.BytesUploaded += r.BytesUploaded
	if r.StaleView {
		s.StaleViews++
	}
	s.Extract += r.Extract
	s.Stage += r.Stage
	s.Marshal += r.Marshal
	s.Bind += r.Bind
	s.Dispatch += r.Dispatch
}

// Mean returns the average per-frame time of each step.
//
// Returns:
//   - Stats: a copy with every duration divided by Frames; counters are unchanged
func (s Stats) Mean() Stats {
	if s.Frames == 0 {
		return s
	}
	n := time.Duration(s.Frames)
	s.Extract /= n
	s.Stage /= n
	s.Marshal /= n
	s.Bind /= n
	s.Dispatch /= n
	return s
}

// Profiler tracks frame rate, ray tracer step timings and memory statistics.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	window         Stats
	total          Stats
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - interval: how often Tick logs; values <= 0 default to 1 second
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Tick should be called once per frame with that frame's report.
// Logs the window's statistics when the update interval has elapsed.
//
// Parameters:
//   - report: the frame report
//   - err: the frame error, if any
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(report raytracer.FrameReport, err error) bool {
	p.Record(report, err)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.window.Frames) / elapsed.Seconds()
	mean := p.window.Mean()

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	logger.Infof("FPS: %.2f | dispatched %d skipped %d failed %d | uploads %d (%d B) | extract %v stage %v marshal %v bind %v dispatch %v | counter %d",
		fps, p.window.Dispatched, p.window.Skipped, p.window.Failed, p.window.Uploads, p.window.BytesUploaded,
		mean.Extract, mean.Stage, mean.Marshal, mean.Bind, mean.Dispatch, report.Counter)
	logger.Debugf("Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d", heapMB, allocRateMB, p.memStats.NumGC-p.lastGCCount)

	p.window = Stats{}
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Record folds a frame report into the totals without logging.
//
// Parameters:
//   - report: the frame report
//   - err: the frame error, if any
func (p *Profiler) Record(report raytracer.FrameReport, err error) {
	p.window.add(report, err)
	p.total.add(report, err)
}

// Total returns the totals since the profiler was created.
//
// Returns:
//   - Stats: the run totals
func (p *Profiler) Total() Stats {
	return p.total
}
