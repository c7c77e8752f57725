package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "essaypilot", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "essaypilot", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// ModelRequests counts generative-model calls by kind (analyze|rewrite)
	// and outcome (ok|error).
	ModelRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "essaypilot", Name: "model_requests_total", Help: "Number of generative model requests by kind and outcome."},
		[]string{"kind", "outcome"},
	)
	// AnalysisFallbacks counts analysis replies that could not be parsed and
	// were replaced with the fixed fallback payload.
	AnalysisFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "essaypilot", Name: "analysis_fallbacks_total", Help: "Number of unparseable analysis replies downgraded to the fallback payload."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ModelRequests)
	reg.MustRegister(AnalysisFallbacks)
}
