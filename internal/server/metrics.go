package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the outcomes that matter operationally: invite redemptions
// are the conversion funnel, webhook results catch provider integration
// breakage early.
type Metrics struct {
	InviteRedemptions *prometheus.CounterVec
	WebhookEvents     *prometheus.CounterVec
	Logins            *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		InviteRedemptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autoescuela",
			Name:      "invite_redemptions_total",
			Help:      "Invite redemption attempts by outcome.",
		}, []string{"outcome"}),
		WebhookEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autoescuela",
			Name:      "billing_webhook_events_total",
			Help:      "Inbound billing webhook deliveries by provider and outcome.",
		}, []string{"provider", "outcome"}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "autoescuela",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
}
