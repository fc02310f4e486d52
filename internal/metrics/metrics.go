package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AwardRunsTotal counts award passes by status (completed, error).
	AwardRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "award_runs_total",
			Help: "Total number of token award passes by status",
		},
		[]string{"status"},
	)

	// AwardUsersTotal counts per-user outcomes of award passes (awarded, skipped).
	AwardUsersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "award_users_total",
			Help: "Users processed by award passes by outcome",
		},
		[]string{"outcome"},
	)

	// TokensAwardedTotal counts tokens credited across all award passes.
	TokensAwardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_awarded_total",
			Help: "Total number of tokens credited to users",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AwardRunsTotal, AwardUsersTotal, TokensAwardedTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncAwardRuns increments the award pass counter for the given status (completed, error).
func IncAwardRuns(status string) {
	AwardRunsTotal.WithLabelValues(status).Inc()
}

// AddAwardOutcome records the result of a completed award pass.
func AddAwardOutcome(awarded, skipped, tokens int) {
	AwardUsersTotal.WithLabelValues("awarded").Add(float64(awarded))
	AwardUsersTotal.WithLabelValues("skipped").Add(float64(skipped))
	TokensAwardedTotal.Add(float64(tokens))
}
