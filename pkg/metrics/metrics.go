// Package metrics defines the custom Prometheus metrics of the catalogue API.
// HTTP request metrics come from echoprometheus; everything here is
// domain-level. All metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "yamdb"

// ── Identity ──────────────────────────────────────────────────────────────────

// SignupsTotal counts users created through signup.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of users created by the signup endpoint.",
	},
)

// ConfirmationsIssuedTotal counts confirmation codes stored, first signup and
// re-issues alike.
var ConfirmationsIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "confirmations_issued_total",
		Help:      "Total number of confirmation codes issued.",
	},
)

// TokenExchangesTotal counts token exchange attempts.
// Label:
//   - result: "ok", "invalid_code" or "unknown_user"
var TokenExchangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_exchanges_total",
		Help:      "Total number of confirmation code exchanges, by result.",
	},
	[]string{"result"},
)

// ── Notifications ─────────────────────────────────────────────────────────────

// NotificationsSentTotal counts messages handed to the delivery backend.
// Label:
//   - backend: "log", "mailgun" or "rabbitmq"
var NotificationsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_sent_total",
		Help:      "Total number of notifications delivered to the backend.",
	},
	[]string{"backend"},
)

// NotificationsFailedTotal counts notifications that could not be delivered.
// Label:
//   - stage: "enqueue" (dispatcher refused) or "deliver" (backend error)
var NotificationsFailedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_failed_total",
		Help:      "Total number of notifications that failed, by stage.",
	},
	[]string{"stage"},
)

// NotificationQueueDepth tracks pending messages per dispatcher worker.
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Reviews ───────────────────────────────────────────────────────────────────

// ReviewsSubmittedTotal counts review submissions.
// Label:
//   - result: "created" or "duplicate"
var ReviewsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reviews_submitted_total",
		Help:      "Total number of review submissions, by result.",
	},
	[]string{"result"},
)

// AuthorizationDeniedTotal counts policy denials.
// Label:
//   - resource: "taxonomy", "review", "comment", "users" or "self"
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests denied by the authorization policy.",
	},
	[]string{"resource"},
)
