// Package featuregate computes the feature set visible to an account from
// its subscription plan and trial window. Advisory only: it never touches
// role or standing.
package featuregate

import (
	"time"

	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
)

// Gate evaluates plan visibility. FallbackFeatures is the minimal set an
// account keeps once its trial lapses without payment confirmation; it comes
// from configuration, not code.
type Gate struct {
	fallback []string
}

// New builds a gate with the configured fallback feature set.
func New(fallbackFeatures []string) *Gate {
	return &Gate{fallback: append([]string(nil), fallbackFeatures...)}
}

// Visible returns the ordered feature list the profile may see at the given
// instant. Pure: no I/O, no mutation of its inputs.
func (g *Gate) Visible(profile *models.Profile, plan *models.SubscriptionPlan, now time.Time) []string {
	if profile == nil || plan == nil || !plan.IsActive {
		return g.fallbackCopy()
	}
	if profile.SubscriptionPlanID == nil || *profile.SubscriptionPlanID != plan.ID {
		return g.fallbackCopy()
	}

	if g.inTrial(profile, plan, now) {
		return append([]string(nil), plan.Features...)
	}
	return g.fallbackCopy()
}

// InTrial reports whether the profile's trial window is still open.
func (g *Gate) InTrial(profile *models.Profile, plan *models.SubscriptionPlan, now time.Time) bool {
	if profile == nil || plan == nil {
		return false
	}
	return g.inTrial(profile, plan, now)
}

func (g *Gate) inTrial(profile *models.Profile, plan *models.SubscriptionPlan, now time.Time) bool {
	if plan.TrialDays <= 0 {
		return false
	}
	if profile.ActivatedAt == nil {
		return false
	}
	expiry := profile.ActivatedAt.AddDate(0, 0, plan.TrialDays)
	return now.Before(expiry)
}

func (g *Gate) fallbackCopy() []string {
	return append([]string(nil), g.fallback...)
}
