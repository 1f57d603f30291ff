package metrics

import (
	"net/http"

	"github.com/benmeehan/geotrack/internal/models"
	"github.com/benmeehan/geotrack/pkg/location"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the tracker's prometheus metrics on their own registry.
type Collectors struct {
	registry *prometheus.Registry

	FixesTotal         prometheus.Counter
	RequestErrorsTotal *prometheus.CounterVec
	HistorySamples     prometheus.Gauge
	LastFixTimestamp   prometheus.Gauge
}

// NewCollectors creates and registers the collectors.
func NewCollectors() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		FixesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "geotrack_fixes_total",
			Help: "Total number of accepted position fixes",
		}),
		RequestErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "geotrack_request_errors_total",
			Help: "Failed position requests by error kind",
		}, []string{"kind"}),
		HistorySamples: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geotrack_history_samples",
			Help: "Number of samples in the location history",
		}),
		LastFixTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "geotrack_last_fix_timestamp_seconds",
			Help: "Unix time of the latest accepted fix",
		}),
	}

	c.registry.MustRegister(c.FixesTotal, c.RequestErrorsTotal, c.HistorySamples, c.LastFixTimestamp)
	// Runtime and host process usage of the agent itself
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// ObserveFix records an accepted fix.
func (c *Collectors) ObserveFix(sample models.LocationSample, _ location.Location) {
	c.FixesTotal.Inc()
	c.LastFixTimestamp.Set(float64(sample.Timestamp.UnixMilli()) / 1000)
}

// ObserveError records a failed request.
func (c *Collectors) ObserveError(kind location.ErrorKind) {
	c.RequestErrorsTotal.WithLabelValues(kind.String()).Inc()
}

// ObserveHistory records the current history length.
func (c *Collectors) ObserveHistory(samples []models.LocationSample) {
	c.HistorySamples.Set(float64(len(samples)))
}

func (c *Collectors) Registry() *prometheus.Registry { return c.registry }

// Handler exposes the registry in the prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
