// README: Prometheus collectors for preference extraction and generation backend calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PreferenceMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_preference_matches_total",
			Help: "Total number of utterances that updated a preference field",
		},
		[]string{"field"},
	)

	PreferenceParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_preference_parse_failures_total",
			Help: "Total number of matched captures that failed numeric parsing",
		},
		[]string{"field"},
	)

	BackendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripmate_backend_requests_total",
			Help: "Total number of generation backend requests",
		},
		[]string{"kind", "outcome"},
	)

	BackendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tripmate_backend_request_duration_seconds",
			Help: "Duration of generation backend requests in seconds",
		},
		[]string{"kind"},
	)

	SessionWriteConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripmate_session_write_conflicts_total",
			Help: "Total number of session writes retried after a version conflict",
		},
	)

	ConversationResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripmate_conversation_resets_total",
			Help: "Total number of conversations cleared",
		},
	)
)
