// Package metrics times the hot paths of the wizard screen: frame rendering,
// selection store I/O, particle generation and config reloads.
//
// Samples are kept in process memory and written to the debug log when the
// screen exits. Collection is on unless WB_METRICS=0.
//
//	defer metrics.Timer(metrics.ViewRender)()
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var collecting atomic.Bool

func init() {
	collecting.Store(os.Getenv("WB_METRICS") != "0")
}

// Enabled reports whether samples are being collected.
func Enabled() bool { return collecting.Load() }

// SetEnabled turns collection on or off.
func SetEnabled(e bool) { collecting.Store(e) }

// TimingMetric accumulates durations for one named operation. It is safe
// for concurrent use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	max   atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample. It is a no-op while collection is off.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	raise(&m.max, ns)
	lower(&m.min, ns)
}

func raise(v *atomic.Int64, ns int64) {
	for cur := v.Load(); ns > cur; cur = v.Load() {
		if v.CompareAndSwap(cur, ns) {
			return
		}
	}
}

func lower(v *atomic.Int64, ns int64) {
	for cur := v.Load(); cur == 0 || ns < cur; cur = v.Load() {
		if v.CompareAndSwap(cur, ns) {
			return
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// Stats snapshots the metric in milliseconds.
func (m *TimingMetric) Stats() TimingStats {
	n := m.count.Load()
	total := m.total.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   n,
		TotalMs: ms(total),
		MaxMs:   ms(m.max.Load()),
		MinMs:   ms(m.min.Load()),
	}
	if n > 0 {
		s.AvgMs = ms(total / n)
	}
	return s
}

func ms(ns int64) float64 { return float64(ns) / float64(time.Millisecond) }

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats is a point-in-time view of a TimingMetric.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Avg returns the mean sample as a duration.
func (s TimingStats) Avg() time.Duration {
	return time.Duration(s.AvgMs * float64(time.Millisecond))
}

// Max returns the slowest sample as a duration.
func (s TimingStats) Max() time.Duration {
	return time.Duration(s.MaxMs * float64(time.Millisecond))
}

// Timer starts timing m; call the returned func to record the sample.
func Timer(m *TimingMetric) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() { m.Record(time.Since(start)) }
}

// Metrics recorded by wb.
var (
	ViewRender       = newTimingMetric("view_render")
	StoreLoad        = newTimingMetric("store_load")
	StoreWrite       = newTimingMetric("store_write")
	ParticleGenerate = newTimingMetric("particle_generate")
	ConfigReload     = newTimingMetric("config_reload")
)

// AllTimingMetrics lists the metrics above in report order.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{ViewRender, StoreLoad, StoreWrite, ParticleGenerate, ConfigReload}
}

// ResetAll resets every metric.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
