// Package metrics holds the process-wide Prometheus collectors shared by
// the model client and batch orchestrator: response-code distribution,
// retry counts, checkpoint lag, and batch throughput (spec's DOMAIN STACK
// expansion — distinct from the pass@k/precision "metric aggregation"
// spec.md marks out of scope, which stays a pure-function external
// collaborator).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ModelCallsTotal counts every Model Client call by model name and
	// resulting status code.
	ModelCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sygra_model_calls_total",
		Help: "Total model client calls, labeled by model and status code.",
	}, []string{"model", "status_code"})

	// ModelCallErrorsTotal counts non-200 calls by model and error
	// category (spec §4.2 stats categorization).
	ModelCallErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sygra_model_call_errors_total",
		Help: "Non-200 model client calls, labeled by model and error category.",
	}, []string{"model", "category"})

	// ModelRetryAttempts observes how many attempts a logical call took
	// before succeeding or exhausting retry_attempts (spec §8 invariant 5).
	ModelRetryAttempts = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sygra_model_retry_attempts",
		Help:    "Attempts taken per logical model call.",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	}, []string{"model"})

	// ModelPromptTokens observes the estimated BPE token count of each
	// call's rendered prompt, surfacing context-budget pressure before a
	// vendor starts rejecting oversized requests.
	ModelPromptTokens = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sygra_model_prompt_tokens",
		Help:    "Estimated prompt token count per model call.",
		Buckets: prometheus.ExponentialBuckets(16, 2, 12),
	}, []string{"model"})

	// BatchRecordsTotal counts completed records by outcome (spec §4.5).
	BatchRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sygra_batch_records_total",
		Help: "Records completed by the batch orchestrator, labeled by outcome.",
	}, []string{"outcome"})

	// CheckpointLastIndex reports the highest contiguously-completed input
	// index per run (spec §6 "Checkpoint file").
	CheckpointLastIndex = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sygra_checkpoint_last_completed_index",
		Help: "Highest contiguously-completed input index, labeled by run id.",
	}, []string{"run_id"})
)

func init() {
	prometheus.MustRegister(
		ModelCallsTotal,
		ModelCallErrorsTotal,
		ModelRetryAttempts,
		ModelPromptTokens,
		BatchRecordsTotal,
		CheckpointLastIndex,
	)
}
