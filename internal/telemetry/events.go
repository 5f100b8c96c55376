package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login flow outcomes
const (
	OutcomeStarted            = "started"
	OutcomeSucceeded          = "succeeded"
	OutcomeFailed             = "failed"
	OutcomeLoggedOut          = "logged_out"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeRateLimited        = "rate_limited"
)

var (
	storefrontLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_login_events_total",
			Help: "Relying party login flow events by outcome",
		},
		[]string{"outcome"},
	)

	identityLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_login_attempts_total",
			Help: "Identity provider credential checks by outcome",
		},
		[]string{"outcome"},
	)

	identityTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_token_requests_total",
			Help: "Token endpoint requests by outcome",
		},
		[]string{"outcome"},
	)
)

// StorefrontLogin records a storefront login flow event
func StorefrontLogin(outcome string) {
	storefrontLogins.WithLabelValues(outcome).Inc()
}

// IdentityLogin records an identity provider credential check
func IdentityLogin(outcome string) {
	identityLogins.WithLabelValues(outcome).Inc()
}

// IdentityToken records a token endpoint request
func IdentityToken(outcome string) {
	identityTokens.WithLabelValues(outcome).Inc()
}
