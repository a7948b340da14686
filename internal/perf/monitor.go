// Package perf tracks where the virtualizer spends its time, backing the
// engine's benchmarking API.
package perf

import (
	"sync"
	"time"
)

// maxSamples bounds the per-metric sample history.
const maxSamples = 100

// Metric aggregates durations recorded under one name.
type Metric struct {
	Name      string
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
	LastTime  time.Duration
	Samples   []time.Duration
}

// AverageTime returns the mean recorded duration.
func (m *Metric) AverageTime() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.TotalTime / time.Duration(m.Count)
}

// Monitor collects named duration metrics.
type Monitor struct {
	mu      sync.Mutex
	metrics map[string]*Metric
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{metrics: make(map[string]*Metric)}
}

// StartTimer starts timing an operation; the returned func records the
// elapsed duration under name.
func (p *Monitor) StartTimer(name string) func() {
	start := time.Now()
	return func() {
		p.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration records one duration under name.
func (p *Monitor) RecordDuration(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.metrics[name]
	if !ok {
		m = &Metric{
			Name:    name,
			MinTime: d,
			MaxTime: d,
			Samples: make([]time.Duration, 0, maxSamples),
		}
		p.metrics[name] = m
	}

	m.Count++
	m.TotalTime += d
	m.LastTime = d
	if d < m.MinTime {
		m.MinTime = d
	}
	if d > m.MaxTime {
		m.MaxTime = d
	}
	if len(m.Samples) >= maxSamples {
		m.Samples = m.Samples[1:]
	}
	m.Samples = append(m.Samples, d)
}

// Total returns the summed duration recorded under name.
func (p *Monitor) Total(name string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := p.metrics[name]; ok {
		return m.TotalTime
	}
	return 0
}

// Metric returns a copy of the named metric, or nil if nothing was recorded.
func (p *Monitor) Metric(name string) *Metric {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.metrics[name]
	if !ok {
		return nil
	}
	out := *m
	out.Samples = append([]time.Duration(nil), m.Samples...)
	return &out
}

// Reset clears all recorded metrics.
func (p *Monitor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = make(map[string]*Metric)
}
