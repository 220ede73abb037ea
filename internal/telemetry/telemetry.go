package telemetry

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// PolicyLoads counts document load attempts by outcome.
	PolicyLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_loads_total",
		Help: "Total policy document load attempts",
	}, []string{"outcome"})

	// Evaluations counts hardware evaluations by whether any rule matched.
	Evaluations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "policy_evaluations_total",
		Help: "Total hardware evaluations",
	}, []string{"matched"})

	// PolicyRules tracks the rule count of the active policy set.
	PolicyRules = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "policy_rules",
		Help: "Number of rules in the active policy set",
	})

	// PolicyMaxRuleID tracks the highest rule id seen in the active document.
	PolicyMaxRuleID = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "policy_max_rule_id",
		Help: "Highest rule id present in the active policy document",
	})

	// SSEClients tracks currently connected policy-event stream clients.
	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sse_clients",
		Help: "Number of currently connected SSE clients",
	})
)

func Init() {
	prometheus.MustRegister(httpReqs, httpDur, PolicyLoads, Evaluations, PolicyRules, PolicyMaxRuleID, SSEClients)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// get route pattern if available
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}

		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
