package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var providerCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_moderation_provider_calls",
	Help: "Number of classifier provider calls, by provider and outcome",
}, []string{"provider", "outcome"})

var providerCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "warden_moderation_provider_duration_sec",
	Help: "Duration of classifier provider calls",
}, []string{"provider"})

var decisionCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_moderation_cache_hits",
	Help: "Number of decision cache hits (zero provider calls)",
})

var decisionCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_moderation_cache_misses",
	Help: "Number of decision cache misses",
})

var moderationDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_moderation_decisions",
	Help: "Number of consensus decisions computed, by action",
}, []string{"action"})

var failSafeDecisions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_moderation_failsafe_decisions",
	Help: "Number of evaluations where zero providers responded",
})
