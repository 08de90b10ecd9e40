// Package domain holds the subscription gate and the webhook mirror contract.
package domain

import (
	"time"

	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
)

// Denial reasons, drawn from a fixed mapping.
const (
	ReasonTrialEnded      = "trial-ended"
	ReasonPaymentOverdue  = "payment-overdue"
	ReasonCanceled        = "canceled"
	ReasonSetupIncomplete = "setup-incomplete"
	ReasonInactive        = "generic-inactive"
)

// Decision is the allow/deny outcome for one request. It is never cached;
// callers re-evaluate on every protected page load.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Evaluate is the pure gate over a school's persisted billing fields:
// access is allowed while the subscription is active, or while an unexpired
// trial is running. Everything else is denied with a fixed reason.
func Evaluate(status string, trialEndsAt *time.Time, now time.Time) Decision {
	switch status {
	case schooldomain.SubscriptionActive:
		return Decision{Allowed: true}
	case schooldomain.SubscriptionTrialing:
		if trialEndsAt != nil && trialEndsAt.After(now) {
			return Decision{Allowed: true}
		}
		return Decision{Reason: ReasonTrialEnded}
	case schooldomain.SubscriptionPastDue:
		return Decision{Reason: ReasonPaymentOverdue}
	case schooldomain.SubscriptionCanceled:
		return Decision{Reason: ReasonCanceled}
	case schooldomain.SubscriptionIncomplete:
		return Decision{Reason: ReasonSetupIncomplete}
	default:
		return Decision{Reason: ReasonInactive}
	}
}
