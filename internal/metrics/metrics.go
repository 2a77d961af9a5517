// Package metrics exposes countdown activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the host service and the expiry effects report to.
type Recorder interface {
	RecordStart(selectedSeconds int)
	RecordStop()
	RecordExtend(seconds int)
	RecordExpiry()
	RecordEffectFailure(effect string)
	RecordCommand(source, action string)
	ObserveState(remainingSeconds int, running bool)
}

// Collector implements Recorder with Prometheus metrics.
type Collector struct {
	starts         prometheus.Counter
	stops          prometheus.Counter
	extends        prometheus.Counter
	extendSeconds  prometheus.Counter
	expiries       prometheus.Counter
	effectFailures *prometheus.CounterVec
	commands       *prometheus.CounterVec
	selected       prometheus.Histogram
	remaining      prometheus.Gauge
	running        prometheus.Gauge
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		starts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sleepat_timer_starts_total",
			Help: "Countdowns started.",
		}),
		stops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sleepat_timer_stops_total",
			Help: "Countdowns cancelled before expiry.",
		}),
		extends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sleepat_timer_extends_total",
			Help: "Extensions applied to running countdowns.",
		}),
		extendSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sleepat_timer_extend_seconds_total",
			Help: "Seconds added by extensions.",
		}),
		expiries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sleepat_timer_expiries_total",
			Help: "Countdowns that reached zero.",
		}),
		effectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sleepat_expiry_effect_failures_total",
			Help: "Expiry side effects that failed, by effect.",
		}, []string{"effect"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sleepat_commands_total",
			Help: "Commands received, by source and action.",
		}, []string{"source", "action"}),
		selected: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sleepat_timer_selected_seconds",
			Help:    "Selected countdown length at start.",
			Buckets: []float64{300, 600, 900, 1800, 2700, 3600, 5400, 7200},
		}),
		remaining: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sleepat_timer_remaining_seconds",
			Help: "Seconds left on the countdown.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sleepat_timer_running",
			Help: "1 while a countdown is running.",
		}),
	}

	reg.MustRegister(
		c.starts,
		c.stops,
		c.extends,
		c.extendSeconds,
		c.expiries,
		c.effectFailures,
		c.commands,
		c.selected,
		c.remaining,
		c.running,
	)

	return c
}

func (c *Collector) RecordStart(selectedSeconds int) {
	c.starts.Inc()
	c.selected.Observe(float64(selectedSeconds))
}

func (c *Collector) RecordStop() {
	c.stops.Inc()
}

func (c *Collector) RecordExtend(seconds int) {
	c.extends.Inc()
	c.extendSeconds.Add(float64(seconds))
}

func (c *Collector) RecordExpiry() {
	c.expiries.Inc()
}

func (c *Collector) RecordEffectFailure(effect string) {
	c.effectFailures.WithLabelValues(effect).Inc()
}

func (c *Collector) RecordCommand(source, action string) {
	c.commands.WithLabelValues(source, action).Inc()
}

func (c *Collector) ObserveState(remainingSeconds int, running bool) {
	c.remaining.Set(float64(remainingSeconds))
	if running {
		c.running.Set(1)
	} else {
		c.running.Set(0)
	}
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordStart(int)                 {}
func (Nop) RecordStop()                     {}
func (Nop) RecordExtend(int)                {}
func (Nop) RecordExpiry()                   {}
func (Nop) RecordEffectFailure(string)      {}
func (Nop) RecordCommand(string, string)    {}
func (Nop) ObserveState(int, bool)          {}
