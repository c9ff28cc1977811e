package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider, operation and outcome",
		},
		[]string{"provider", "operation", "status"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"provider", "operation"},
	)

	DocIntelPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docintel_polls_total",
			Help: "Layout analysis status checks by reported status",
		},
		[]string{"status"},
	)

	QuestionFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "question_fallbacks_total",
			Help: "Question sets completed from the static fallback list",
		},
	)

	SessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_transitions_total",
			Help: "Interview session state transitions by target state",
		},
		[]string{"state"},
	)

	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluations_total",
			Help: "Completed evaluations by overall rating",
		},
		[]string{"rating"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events written to the message broker by topic and outcome",
		},
		[]string{"topic", "status"},
	)

	initOnce sync.Once
)

// InitMetrics registers all collectors with the default registry. Safe to call twice.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			DocIntelPollsTotal,
			QuestionFallbacksTotal,
			SessionTransitionsTotal,
			EvaluationsTotal,
			EventsPublishedTotal,
		)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one upstream model call.
func ObserveAIRequest(provider, operation, status string, d time.Duration) {
	AIRequestsTotal.WithLabelValues(provider, operation, status).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// ObservePoll records one layout analysis status check.
func ObservePoll(status string) {
	if status == "" {
		status = "unknown"
	}
	DocIntelPollsTotal.WithLabelValues(status).Inc()
}

// ObserveFallback records a question set padded from the fallback list.
func ObserveFallback() { QuestionFallbacksTotal.Inc() }

// ObserveTransition records a session entering state.
func ObserveTransition(state domain.SessionState) {
	SessionTransitionsTotal.WithLabelValues(string(state)).Inc()
}

// ObserveEvaluation records the overall rating of a completed evaluation.
func ObserveEvaluation(rating domain.Rating) {
	if !rating.Valid() {
		return
	}
	EvaluationsTotal.WithLabelValues(string(rating)).Inc()
}

// ObservePublish counts one broker publish attempt.
func ObservePublish(topic, status string) {
	EventsPublishedTotal.WithLabelValues(topic, status).Inc()
}
