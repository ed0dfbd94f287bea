// Package observability exposes simulation counters to Prometheus.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/whatsacomputertho/elevator-optimization/internal/engine"
)

type Metrics struct {
	registry *prometheus.Registry

	ticksTotal      prometheus.Counter
	arrivalsTotal   prometheus.Counter
	departuresTotal prometheus.Counter
	boardingsTotal  prometheus.Counter
	energyTotal     prometheus.Counter
	population      prometheus.Gauge
	waitTicks       prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_ticks_total",
			Help: "Total simulation ticks processed.",
		}),
		arrivalsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_arrivals_total",
			Help: "Total persons who entered the building.",
		}),
		departuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_departures_total",
			Help: "Total persons who left the building.",
		}),
		boardingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_boardings_total",
			Help: "Total elevator boardings.",
		}),
		energyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sim_energy_total",
			Help: "Total energy spent by all elevators.",
		}),
		population: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sim_population",
			Help: "Persons currently inside the building.",
		}),
		waitTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sim_wait_ticks",
			Help:    "Histogram of per-ride wait times, in ticks.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	m.registry.MustRegister(
		m.ticksTotal,
		m.arrivalsTotal,
		m.departuresTotal,
		m.boardingsTotal,
		m.energyTotal,
		m.population,
		m.waitTicks,
	)
	return m
}

// ObserveTick folds one tick report into the counters.
func (m *Metrics) ObserveTick(rep engine.TickReport) {
	m.ticksTotal.Inc()
	m.arrivalsTotal.Add(float64(rep.Arrivals))
	m.departuresTotal.Add(float64(rep.Departures))
	m.boardingsTotal.Add(float64(rep.Boardings))
	m.energyTotal.Add(rep.EnergyDelta)
	m.population.Set(float64(rep.Population))
	for _, w := range rep.WaitSamples {
		m.waitTicks.Observe(float64(w))
	}
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
