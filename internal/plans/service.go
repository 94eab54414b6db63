// Package plans manages subscription plan definitions and answers the
// feature-visibility question through the subscription gate.
package plans

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/featuregate"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/roles"
)

// Service defines the plan operations exposed to controllers.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, req CreatePlanRequest) (*PlanDTO, error)
	Update(ctx context.Context, actorID, planID uuid.UUID, req UpdatePlanRequest) (*PlanDTO, error)
	Delete(ctx context.Context, actorID, planID uuid.UUID) error
	List(ctx context.Context, activeOnly bool) ([]PlanDTO, error)
	Get(ctx context.Context, planID uuid.UUID) (*PlanDTO, error)
	VisibleFeatures(ctx context.Context, profileID uuid.UUID) (*FeatureSet, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the plan service dependencies.
type ServiceParams struct {
	Plans    Repository
	Profiles profiles.Repository
	Gate     *featuregate.Gate
	TxRunner txRunner
	Logger   *logger.Logger
}

type service struct {
	plans    Repository
	profiles profiles.Repository
	gate     *featuregate.Gate
	tx       txRunner
	logg     *logger.Logger
}

// NewService constructs the plans service.
func NewService(params ServiceParams) (Service, error) {
	if params.Plans == nil {
		return nil, fmt.Errorf("plans repository is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository is required")
	}
	if params.Gate == nil {
		return nil, fmt.Errorf("feature gate is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		plans:    params.Plans,
		profiles: params.Profiles,
		gate:     params.Gate,
		tx:       params.TxRunner,
		logg:     params.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, req CreatePlanRequest) (*PlanDTO, error) {
	if err := s.requireRank(ctx, actorID, roles.RankSuperAdmin); err != nil {
		return nil, err
	}
	if req.PriceAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_amount cannot be negative")
	}

	plan := &models.SubscriptionPlan{
		Name:         strings.TrimSpace(req.Name),
		PriceAmount:  req.PriceAmount,
		CurrencyCode: strings.ToUpper(strings.TrimSpace(req.CurrencyCode)),
		TrialDays:    req.TrialDays,
		Features:     append([]string(nil), req.Features...),
		IsActive:     true,
	}
	if err := s.plans.Create(ctx, plan); err != nil {
		if pkgerrors.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create plan")
	}
	return ToDTO(plan), nil
}

func (s *service) Update(ctx context.Context, actorID, planID uuid.UUID, req UpdatePlanRequest) (*PlanDTO, error) {
	required := roles.RankAdmin
	if req.touchesPricing() {
		required = roles.RankSuperAdmin
	}
	if err := s.requireRank(ctx, actorID, required); err != nil {
		return nil, err
	}
	if req.PriceAmount != nil && req.PriceAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_amount cannot be negative")
	}

	var updated *models.SubscriptionPlan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.plans.WithTx(tx)
		plan, err := repo.FindByID(ctx, planID)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}

		if req.Name != nil {
			plan.Name = strings.TrimSpace(*req.Name)
		}
		if req.IsActive != nil {
			plan.IsActive = *req.IsActive
		}
		if req.PriceAmount != nil {
			plan.PriceAmount = *req.PriceAmount
		}
		if req.CurrencyCode != nil {
			plan.CurrencyCode = strings.ToUpper(strings.TrimSpace(*req.CurrencyCode))
		}
		if req.TrialDays != nil {
			plan.TrialDays = *req.TrialDays
		}
		if req.Features != nil {
			plan.Features = append([]string(nil), (*req.Features)...)
		}

		if err := repo.Update(ctx, plan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist plan")
		}
		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(updated), nil
}

// Delete removes a plan nobody subscribes to. Super admin only.
func (s *service) Delete(ctx context.Context, actorID, planID uuid.UUID) error {
	if err := s.requireRank(ctx, actorID, roles.RankSuperAdmin); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.plans.WithTx(tx)
		if _, err := repo.FindByID(ctx, planID); err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}
		subscribers, err := repo.CountSubscribers(ctx, planID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subscribers")
		}
		if subscribers > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "plan still has subscribers")
		}
		if err := repo.Delete(ctx, planID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete plan")
		}
		return nil
	})
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]PlanDTO, error) {
	rows, err := s.plans.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list plans")
	}
	out := make([]PlanDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *ToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, planID uuid.UUID) (*PlanDTO, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
	}
	return ToDTO(plan), nil
}

// VisibleFeatures answers the subscription gate for one profile. Profiles
// without a plan, or with an inactive one, get the configured fallback set.
func (s *service) VisibleFeatures(ctx context.Context, profileID uuid.UUID) (*FeatureSet, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	var plan *models.SubscriptionPlan
	if profile.SubscriptionPlanID != nil {
		plan, err = s.plans.FindByID(ctx, *profile.SubscriptionPlanID)
		if err != nil && !IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load plan")
		}
	}

	now := time.Now().UTC()
	return &FeatureSet{
		Features: s.gate.Visible(profile, plan, now),
		InTrial:  s.gate.InTrial(profile, plan, now),
	}, nil
}

func (s *service) requireRank(ctx context.Context, actorID uuid.UUID, rank int) error {
	actor, err := s.profiles.FindByID(ctx, actorID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "acting profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load actor")
	}
	if roles.EffectiveRank(actor) < rank {
		if rank == roles.RankSuperAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "super admin rank required")
		}
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
	}
	return nil
}
