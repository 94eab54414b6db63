package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
)

// PlanDTO is the transport shape for a subscription plan.
type PlanDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	PriceAmount  decimal.Decimal `json:"price_amount"`
	CurrencyCode string          `json:"currency_code"`
	TrialDays    int             `json:"trial_days"`
	Features     []string        `json:"features"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreatePlanRequest carries a new plan definition. Super admin only.
type CreatePlanRequest struct {
	Name         string          `json:"name" validate:"required,max=120"`
	PriceAmount  decimal.Decimal `json:"price_amount"`
	CurrencyCode string          `json:"currency_code" validate:"required,len=3"`
	TrialDays    int             `json:"trial_days" validate:"gte=0"`
	Features     []string        `json:"features" validate:"required,min=1"`
}

// UpdatePlanRequest mutates plan fields. Name and activation changes need
// admin rank; pricing, currency, trial, and feature edits need the super
// admin. Nil pointers leave the stored value untouched.
type UpdatePlanRequest struct {
	Name         *string          `json:"name" validate:"omitempty,min=1,max=120"`
	IsActive     *bool            `json:"is_active"`
	PriceAmount  *decimal.Decimal `json:"price_amount"`
	CurrencyCode *string          `json:"currency_code" validate:"omitempty,len=3"`
	TrialDays    *int             `json:"trial_days" validate:"omitempty,gte=0"`
	Features     *[]string        `json:"features" validate:"omitempty,min=1"`
}

// FeatureSet is the subscription gate's answer for one profile.
type FeatureSet struct {
	Features []string `json:"features"`
	InTrial  bool     `json:"in_trial"`
}

func (r UpdatePlanRequest) touchesPricing() bool {
	return r.PriceAmount != nil || r.CurrencyCode != nil || r.TrialDays != nil || r.Features != nil
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.SubscriptionPlan) *PlanDTO {
	if m == nil {
		return nil
	}
	return &PlanDTO{
		ID:           m.ID,
		Name:         m.Name,
		PriceAmount:  m.PriceAmount,
		CurrencyCode: m.CurrencyCode,
		TrialDays:    m.TrialDays,
		Features:     append([]string(nil), m.Features...),
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
