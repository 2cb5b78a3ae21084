// Package metrics defines the custom Prometheus metrics for the Instroom web
// backend. HTTP request metrics come from echoprometheus; everything here is
// about the account and session lifecycle.
//
// Metrics register with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "instroom"

// Result label values shared by the counters below.
const (
	ResultSuccess  = "success"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultDenied   = "denied"
	ResultError    = "error"
)

// ── Account metrics ───────────────────────────────────────────────────────────

// SignupsTotal counts registration attempts.
// Label:
//   - result: success, invalid (form rejected), conflict (email taken), error
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts credential checks.
// Label:
//   - result: success, denied (invalid credentials), error
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// LogoutsTotal counts logouts. A failed revocation still clears the cookie.
// Label:
//   - result: success, error (revocation could not be recorded)
var LogoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of logouts, by revocation result.",
	},
	[]string{"result"},
)

// SessionExtensionsTotal counts explicit session renewals.
var SessionExtensionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_extensions_total",
		Help:      "Total number of session extension requests, by result.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - state: anonymous, denied, authorized
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard evaluations, by terminal state.",
	},
	[]string{"state"},
)
