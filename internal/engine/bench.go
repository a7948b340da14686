package engine

import (
	"errors"
	"time"

	"github.com/HamStudy/vscroll/internal/perf"
)

// ErrNotBenchmarking is returned by StopBenchmarking without a matching
// StartBenchmarking.
var ErrNotBenchmarking = errors.New("engine: benchmarking not started")

// benchState holds an active benchmarking session.
type benchState struct {
	start   time.Time
	monitor *perf.Monitor
}

// BenchmarkReport summarizes one benchmarking session.
type BenchmarkReport struct {
	// TimeElapsed is wall time between start and stop.
	TimeElapsed time.Duration

	// VirtualizationTime is the time spent inside the engine's update and
	// apply phases during the session.
	VirtualizationTime time.Duration
}

// StartBenchmarking begins collecting per-phase timings. Calling it while a
// session is active restarts the session.
func (v *Virtualizer) StartBenchmarking() {
	v.bench = &benchState{
		start:   time.Now(),
		monitor: perf.NewMonitor(),
	}
}

// StopBenchmarking ends the session and reports wall time against time spent
// virtualizing.
func (v *Virtualizer) StopBenchmarking() (BenchmarkReport, error) {
	b := v.bench
	v.bench = nil
	if b == nil {
		v.logger.Printf("engine: StopBenchmarking without StartBenchmarking")
		return BenchmarkReport{}, ErrNotBenchmarking
	}
	return BenchmarkReport{
		TimeElapsed:        time.Since(b.start),
		VirtualizationTime: b.monitor.Total("update") + b.monitor.Total("apply"),
	}, nil
}

// benchTimer times one engine phase while a session is active; otherwise it
// is a no-op.
func (v *Virtualizer) benchTimer(name string) func() {
	b := v.bench
	if b == nil {
		return func() {}
	}
	return b.monitor.StartTimer(name)
}
