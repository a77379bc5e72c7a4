// Package metrics owns the Prometheus registry exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Render outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid"
	OutcomeRenderFail = "error"
)

type Registry struct {
	reg *prometheus.Registry

	Renders         *prometheus.CounterVec // by outcome
	RenderLatency   prometheus.Histogram
	ChallansCreated prometheus.Counter
	PDFCacheHits    prometheus.Counter
	PDFCacheMisses  prometheus.Counter
	EmailJobs       *prometheus.CounterVec // by result: sent | retried | dead
	BreakerState    *prometheus.GaugeVec   // 0 closed, 1 open, 2 half-open
	HTTPRequests    *prometheus.CounterVec // by method, route, status
	HTTPLatency     *prometheus.HistogramVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	renders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "challan_renders_total",
		Help: "Receipt renders by outcome.",
	}, []string{"outcome"})
	renderLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "challan_render_seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	})
	created := prometheus.NewCounter(prometheus.CounterOpts{Name: "challans_created_total"})
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "challan_pdf_cache_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "challan_pdf_cache_misses_total"})
	email := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "challan_email_jobs_total"}, []string{"result"})
	breaker := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "circuit_breaker_state"}, []string{"name"})
	httpReqs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	r.MustRegister(renders, renderLatency, created, hits, misses, email, breaker, httpReqs, httpLatency,
		collectors.NewGoCollector(),
	)
	return &Registry{
		reg:             r,
		Renders:         renders,
		RenderLatency:   renderLatency,
		ChallansCreated: created,
		PDFCacheHits:    hits,
		PDFCacheMisses:  misses,
		EmailJobs:       email,
		BreakerState:    breaker,
		HTTPRequests:    httpReqs,
		HTTPLatency:     httpLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
