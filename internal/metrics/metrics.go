// Package metrics exposes Prometheus instrumentation for the registration
// and verification flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SignupsTotal counts signup attempts by outcome ("ok" or a rejection
	// reason such as "community_full").
	SignupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delegation",
		Subsystem: "registration",
		Name:      "signups_total",
		Help:      "Signup attempts by outcome.",
	}, []string{"outcome"})

	// ReconciliationsTotal counts verification reconciliation runs by
	// outcome ("applied", "noop", "error").
	ReconciliationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delegation",
		Subsystem: "registration",
		Name:      "reconciliations_total",
		Help:      "Verification reconciliation runs by outcome.",
	}, []string{"outcome"})

	// SignInsTotal counts sign-in attempts by outcome ("ok",
	// "invalid_credentials", "unverified").
	SignInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delegation",
		Subsystem: "auth",
		Name:      "sign_ins_total",
		Help:      "Sign-in attempts by outcome.",
	}, []string{"outcome"})

	// EmailsSentTotal counts outbound emails by kind ("verification",
	// "reset") and status ("sent", "failed", "skipped").
	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "delegation",
		Subsystem: "mailer",
		Name:      "emails_sent_total",
		Help:      "Outbound emails by kind and status.",
	}, []string{"kind", "status"})
)
