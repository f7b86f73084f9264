package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusRecorder struct {
	buildDuration   prom.Histogram
	buildOutcome    *prom.CounterVec
	posts           prom.Gauge
	warnings        prom.Counter
	requestDuration *prom.HistogramVec
	toggles         *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "inkblog",
			Name:      "build_duration_seconds",
			Help:      "Duration of ingest, ordering and indexing",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "inkblog",
			Name:      "build_outcomes_total",
			Help:      "Rebuilds by outcome",
		}, []string{"outcome"}),
		posts: prom.NewGauge(prom.GaugeOpts{
			Namespace: "inkblog",
			Name:      "posts",
			Help:      "Posts in the current ordered list",
		}),
		warnings: prom.NewCounter(prom.CounterOpts{
			Namespace: "inkblog",
			Name:      "ingest_warnings_total",
			Help:      "Warnings raised while ingesting sources",
		}),
		requestDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "inkblog",
			Name:      "http_request_duration_seconds",
			Help:      "Dev server request latency",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "status"}),
		toggles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "inkblog",
			Name:      "code_toggles_total",
			Help:      "Code block toggle actions applied",
		}, []string{"mode"}),
	}
	reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.posts, pr.warnings, pr.requestDuration, pr.toggles)
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPosts(n int) {
	if p == nil {
		return
	}
	p.posts.Set(float64(n))
}

func (p *PrometheusRecorder) AddWarnings(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.warnings.Add(float64(n))
}

func (p *PrometheusRecorder) ObserveRequest(route string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncToggle(mode string) {
	if p == nil {
		return
	}
	p.toggles.WithLabelValues(mode).Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
