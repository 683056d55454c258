package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts processed turns.
	// Labels: result (ok, error)
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renovad",
			Subsystem: "orchestrator",
			Name:      "turns_total",
			Help:      "Total number of processed conversation turns",
		},
		[]string{"result"},
	)

	// TurnDuration tracks end-to-end turn latency.
	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "renovad",
			Subsystem: "orchestrator",
			Name:      "turn_duration_seconds",
			Help:      "Duration of turn processing in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ResearchOutcomes counts research handshake resolutions.
	// Labels: action (confirm, run, decline)
	ResearchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "renovad",
			Subsystem: "orchestrator",
			Name:      "research_outcomes_total",
			Help:      "Total number of research handshake outcomes",
		},
		[]string{"action"},
	)

	// DecisionQuestionsTotal counts decision-graph questions surfaced to
	// users as quick replies.
	DecisionQuestionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "renovad",
			Subsystem: "orchestrator",
			Name:      "decision_questions_total",
			Help:      "Total number of decision-graph questions surfaced",
		},
	)

	// PitfallWarningsTotal counts risky-plan warnings injected into
	// prompts.
	PitfallWarningsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "renovad",
			Subsystem: "orchestrator",
			Name:      "pitfall_warnings_total",
			Help:      "Total number of pitfall warnings injected into prompts",
		},
	)
)
