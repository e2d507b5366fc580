package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsAssigned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_assigned_total",
			Help: "Total number of leads assigned to users",
		},
	)

	assignmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_assignment_failures_total",
			Help: "Total number of rejected lead assignment requests",
		},
		[]string{"reason"},
	)

	statusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_status_transitions_total",
			Help: "Total number of lead status changes",
		},
		[]string{"to"},
	)

	leadsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Total number of source records processed",
		},
		[]string{"source", "result"},
	)

	creditsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "credits_added_total",
			Help: "Total number of credits added by administrators",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		route := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(duration)
	})
}

// routePattern keeps label cardinality bounded: /api/lead/{id} rather than
// one series per lead.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func RecordLeadsAssigned(n int) {
	leadsAssigned.Add(float64(n))
}

func RecordAssignmentFailure(reason string) {
	assignmentFailures.WithLabelValues(reason).Inc()
}

func RecordStatusTransition(to string) {
	statusTransitions.WithLabelValues(to).Inc()
}

func RecordIngest(source, result string) {
	leadsIngested.WithLabelValues(source, result).Inc()
}

func RecordCreditsAdded(n int) {
	creditsAdded.Add(float64(n))
}

func RecordIngestReport(source string, created, duplicates, rejected int) {
	leadsIngested.WithLabelValues(source, "created").Add(float64(created))
	leadsIngested.WithLabelValues(source, "duplicate").Add(float64(duplicates))
	leadsIngested.WithLabelValues(source, "rejected").Add(float64(rejected))
}
