package domain

import (
	"testing"
	"time"

	schooldomain "github.com/orbitaagency1ia/miautoescuela/internal/school/domain"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name        string
		status      string
		trialEndsAt *time.Time
		allowed     bool
		reason      string
	}{
		{"active", schooldomain.SubscriptionActive, nil, true, ""},
		{"active ignores trial date", schooldomain.SubscriptionActive, &past, true, ""},
		{"trialing before deadline", schooldomain.SubscriptionTrialing, &future, true, ""},
		{"trialing past deadline", schooldomain.SubscriptionTrialing, &past, false, ReasonTrialEnded},
		{"trialing exactly at deadline", schooldomain.SubscriptionTrialing, &now, false, ReasonTrialEnded},
		{"trialing without deadline", schooldomain.SubscriptionTrialing, nil, false, ReasonTrialEnded},
		{"past due", schooldomain.SubscriptionPastDue, nil, false, ReasonPaymentOverdue},
		{"canceled", schooldomain.SubscriptionCanceled, nil, false, ReasonCanceled},
		{"incomplete", schooldomain.SubscriptionIncomplete, nil, false, ReasonSetupIncomplete},
		{"unknown status", "something-else", nil, false, ReasonInactive},
		{"empty status", "", nil, false, ReasonInactive},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision := Evaluate(tc.status, tc.trialEndsAt, now)
			assert.Equal(t, tc.allowed, decision.Allowed)
			assert.Equal(t, tc.reason, decision.Reason)
		})
	}
}
