package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "discovery"

var (
	// Hosted auth service calls

	AuthRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_request_duration_seconds",
		Help:      "Latency of calls to the hosted auth service.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"op"})

	AuthRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Calls to the hosted auth service, by operation and outcome.",
	}, []string{"op", "outcome"})

	AuthEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Auth change events emitted by session clients.",
	}, []string{"event"})

	// App instances (one per browser client)

	InstancesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "instances_active",
		Help:      "Number of mounted auth stores.",
	})

	InstancesEvictedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "instances_evicted_total",
		Help:      "Auth stores closed after being idle.",
	})

	FormSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "form_submissions_total",
		Help:      "Auth form submissions, by mode and outcome.",
	}, []string{"mode", "outcome"})

	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Auth form posts rejected by the per-IP limiter.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	EventStreamsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "event_streams_active",
		Help:      "Open server-sent event streams.",
	})
)

func Register() {
	prometheus.MustRegister(
		AuthRequestDuration,
		AuthRequestsTotal,
		AuthEventsTotal,
		InstancesActive,
		InstancesEvictedTotal,
		FormSubmissionsTotal,
		RateLimitedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		EventStreamsActive,
	)
}

// Prober is satisfied by *health.Checker.
type Prober interface {
	LivenessHandler() http.HandlerFunc
	ReadinessHandler() http.HandlerFunc
}

func NewServer(addr string, prober Prober) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", prober.LivenessHandler())
	mux.HandleFunc("/readyz", prober.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
