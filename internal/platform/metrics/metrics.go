package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	ContentPublished     prometheus.Counter
	AuditsCommitted      *prometheus.CounterVec
	SlashesApplied       prometheus.Counter
	SlashedAmount        prometheus.Counter
	StakeOperations      *prometheus.CounterVec
	ReputationAdjusted   prometheus.Counter
	VerifierFallbacks    prometheus.Counter
	VerifierLatency      prometheus.Histogram
	EventsPublished      *prometheus.CounterVec
	EventSinkFailures    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ContentPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentcred_content_published_total",
			Help: "Total number of content records published",
		}),
		AuditsCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcred_audits_committed_total",
			Help: "Total number of audit commits by outcome",
		}, []string{"outcome"}),
		SlashesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentcred_slashes_applied_total",
			Help: "Total number of non-zero slashes applied",
		}),
		SlashedAmount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentcred_slashed_amount_total",
			Help: "Total collateral units moved to the treasury by slashing",
		}),
		StakeOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcred_stake_operations_total",
			Help: "Total stake ledger operations by kind",
		}, []string{"op"}),
		ReputationAdjusted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentcred_reputation_adjustments_total",
			Help: "Total reputation adjustments applied",
		}),
		VerifierFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentcred_verifier_fallbacks_total",
			Help: "Total verdicts produced by the local fallback heuristic",
		}),
		VerifierLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentcred_verifier_latency_seconds",
			Help:    "Latency of external verifier calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcred_events_published_total",
			Help: "Total ledger events appended to the event log by type",
		}, []string{"type"}),
		EventSinkFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "agentcred_event_sink_failures_total",
			Help: "Total failures delivering events to external sinks",
		}),
	}
}
