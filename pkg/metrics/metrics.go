// Package metrics holds the Prometheus collectors exported by the service.
// Aggregation failure absorption is deliberate, so the skip counters here
// are the only place those failures remain visible.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuizzesGenerated counts successful quiz generations.
	QuizzesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_quizzes_generated_total",
		Help: "Number of quizzes generated successfully.",
	})

	// QuestionsGenerated counts individual questions across all quizzes.
	QuestionsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trivia_questions_generated_total",
		Help: "Number of quiz questions generated.",
	})

	// GenerationFailures counts quiz requests that could not be served,
	// by cause.
	GenerationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_generation_failures_total",
		Help: "Number of failed quiz generations by cause.",
	}, []string{"cause"})

	// AggregationSkips counts per-item upstream failures absorbed during
	// best-effort aggregation, by skip reason.
	AggregationSkips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trivia_aggregation_skips_total",
		Help: "Number of upstream items skipped during pool aggregation by reason.",
	}, []string{"reason"})
)

// ObserveSkips records a summary of absorbed aggregation failures.
func ObserveSkips(notFound, permissionDenied, other int) {
	AggregationSkips.WithLabelValues("not_found").Add(float64(notFound))
	AggregationSkips.WithLabelValues("permission_denied").Add(float64(permissionDenied))
	AggregationSkips.WithLabelValues("other").Add(float64(other))
}
