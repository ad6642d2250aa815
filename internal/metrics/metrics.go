// Package metrics holds the Prometheus collectors of the bot. Label values
// are fixed sets, so cardinality stays bounded.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wordlebot"

// Outcome label values.
const (
	OutcomeParsed    = "parsed"
	OutcomeRejected  = "rejected"
	OutcomeInserted  = "inserted"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
	OutcomeOK        = "ok"
)

var (
	MessagesCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_captured_total",
		Help:      "Group messages stored in the inbox.",
	})

	ParseOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "parse_outcomes_total",
		Help:      "Summary parse attempts by outcome.",
	}, []string{"outcome"})

	BatchesStored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batches_stored_total",
		Help:      "Result batch inserts by outcome.",
	}, []string{"outcome"})

	Commands = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Bot commands handled by name.",
	}, []string{"command"})

	WorkflowRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "workflow_runs_total",
		Help:      "Ingest and report runs by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Time spent aggregating the full result history.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	})

	httpReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"path", "status"})
)

func init() {
	prometheus.MustRegister(
		MessagesCaptured,
		ParseOutcomes,
		BatchesStored,
		Commands,
		WorkflowRuns,
		AggregationDuration,
		httpReqs,
	)
}

// ObserveSince records the time elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument counts requests served by next under the fixed route label path.
func Instrument(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		httpReqs.WithLabelValues(path, strconv.Itoa(sw.status)).Inc()
	})
}
