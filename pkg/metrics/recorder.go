package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects advisory and lifecycle counters. A nil Recorder is a no-op.
type Recorder struct {
	registry        *prometheus.Registry
	classifications *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	weatherFetches  *prometheus.CounterVec
}

// NewRecorder registers the orchard counters on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchard_classifications_total",
			Help: "Parameter classifications by family and resulting status.",
		}, []string{"family", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchard_lifecycle_transitions_total",
			Help: "Accepted consultation and prescription transitions.",
		}, []string{"entity", "to"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchard_lifecycle_rejections_total",
			Help: "Lifecycle mutations rejected before or during the write.",
		}, []string{"operation", "code"}),
		weatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orchard_weather_fetch_total",
			Help: "Forecast lookups by result (cache_hit, fetched, failed).",
		}, []string{"result"}),
	}
	reg.MustRegister(r.classifications, r.transitions, r.rejections, r.weatherFetches)
	return r
}

// ObserveClassification counts one classified parameter.
func (r *Recorder) ObserveClassification(family, status string) {
	if r == nil {
		return
	}
	r.classifications.WithLabelValues(family, status).Inc()
}

// ObserveTransition counts an accepted state change.
func (r *Recorder) ObserveTransition(entity, to string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(entity, to).Inc()
}

// ObserveRejection counts a failed mutation.
func (r *Recorder) ObserveRejection(operation, code string) {
	if r == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	r.rejections.WithLabelValues(operation, code).Inc()
}

// ObserveWeatherFetch counts a forecast lookup.
func (r *Recorder) ObserveWeatherFetch(result string) {
	if r == nil {
		return
	}
	r.weatherFetches.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
