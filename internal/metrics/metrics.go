// Package metrics exports arena lifecycle counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomz197/bolas/internal/arena"
)

// Recorder implements arena.Metrics on top of Prometheus collectors.
type Recorder struct {
	arenasTotal        prometheus.Counter
	arenasActive       prometheus.Gauge
	bolasTotal         prometheus.Counter
	bolasActive        prometheus.Gauge
	collisionsResolved prometheus.Counter
}

// Compile-time check that Recorder implements arena.Metrics.
var _ arena.Metrics = (*Recorder)(nil)

// NewRecorder registers the bolas collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		arenasTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "bolas_arenas_total",
			Help: "Number of arenas created.",
		}),
		arenasActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "bolas_arenas_active",
			Help: "Number of arenas currently running.",
		}),
		bolasTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "bolas_bolas_total",
			Help: "Number of bolas launched.",
		}),
		bolasActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "bolas_bolas_active",
			Help: "Number of bolas in running arenas.",
		}),
		collisionsResolved: f.NewCounter(prometheus.CounterOpts{
			Name: "bolas_collisions_resolved_total",
			Help: "Number of collisions resolved across all arenas.",
		}),
	}
}

func (r *Recorder) ArenaCreated() {
	r.arenasTotal.Inc()
	r.arenasActive.Inc()
}

func (r *Recorder) ArenaClosed() {
	r.arenasActive.Dec()
}

func (r *Recorder) BolaAdded() {
	r.bolasTotal.Inc()
	r.bolasActive.Inc()
}

func (r *Recorder) BolasRemoved(n int) {
	r.bolasActive.Sub(float64(n))
}

func (r *Recorder) CollisionsResolved(n int) {
	r.collisionsResolved.Add(float64(n))
}

// Handler serves the metrics gathered by g, negotiating OpenMetrics when the scraper asks for it.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
