package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal counts URL resolutions by outcome
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debounce_resolutions_total",
			Help: "Total number of URL resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// RedirectsTotal counts produced redirects by tracker registrable domain
	RedirectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debounce_redirects_total",
			Help: "Total number of redirects produced, by tracker domain",
		},
		[]string{"tracker"},
	)

	// ErrorsTotal counts errors by type and component
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "debounce_errors_total",
			Help: "Total number of errors by type and component",
		},
		[]string{"type", "component"},
	)

	// RulesLoaded reports the size of the active rule set
	RulesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "debounce_rules_loaded",
			Help: "Number of rules in the active rule set",
		},
	)

	// ResolveDuration tracks resolution processing duration
	ResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "debounce_resolve_duration_seconds",
			Help:    "URL resolution processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
)

// Resolution outcome constants
const (
	OutcomeRedirected = "redirected"
	OutcomeMatched    = "matched_no_redirect"
	OutcomeNoMatch    = "no_match"
)

// Error type constants
const (
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypePolicyFetch  = "policy_fetch"
	ErrorTypePolicyDecode = "policy_decode"
	ErrorTypeCacheRead    = "cache_read"
	ErrorTypeCacheWrite   = "cache_write"
)
