// Package accesscontrol authorizes and applies admin mutations on profiles.
// Every decision re-reads the actor's persisted profile inside the same
// transaction as the write: tokens can go stale, the store is truth.
package accesscontrol

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/internal/identity"
	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/metrics"
	"github.com/scholarly-app/scholarly-backend/pkg/pagination"
	"github.com/scholarly-app/scholarly-backend/pkg/roles"
)

// Service defines the admin-facing profile mutations.
type Service interface {
	PromoteToAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error)
	DemoteAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error)
	SetAccountStatus(ctx context.Context, actorID, targetID uuid.UUID, status enums.AccountStatus) (*profiles.ProfileDTO, error)
	RequestPasswordReset(ctx context.Context, actorID, targetID uuid.UUID) error
	ListUsers(ctx context.Context, actorID uuid.UUID, req ListUsersRequest) (*profiles.ListPage, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies of the access control service.
type ServiceParams struct {
	Profiles profiles.Repository
	Provider identity.Provider
	TxRunner txRunner
	Logger   *logger.Logger
}

type service struct {
	profiles profiles.Repository
	provider identity.Provider
	tx       txRunner
	logg     *logger.Logger
}

// NewService constructs the access control service.
func NewService(params ServiceParams) (Service, error) {
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository is required")
	}
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		profiles: params.Profiles,
		provider: params.Provider,
		tx:       params.TxRunner,
		logg:     params.Logger,
	}, nil
}

func (s *service) PromoteToAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error) {
	return s.mutateRole(ctx, "promote", actorID, targetID, func(target *models.Profile) {
		target.IsAdmin = true
		target.UserType = roles.UserTypeFor(enums.RoleAdmin, target.UserType)
	})
}

// DemoteAdmin strips the admin flag. Demoting a profile that is not an
// admin succeeds as a no-op.
func (s *service) DemoteAdmin(ctx context.Context, actorID, targetID uuid.UUID) (*profiles.ProfileDTO, error) {
	return s.mutateRole(ctx, "demote", actorID, targetID, func(target *models.Profile) {
		target.IsAdmin = false
		target.UserType = roles.UserTypeFor(enums.RoleUser, target.UserType)
	})
}

// mutateRole runs the shared promote/demote path: lock the target row,
// re-read the actor, authorize, apply, write once.
func (s *service) mutateRole(ctx context.Context, action string, actorID, targetID uuid.UUID, apply func(*models.Profile)) (*profiles.ProfileDTO, error) {
	var updated *models.Profile
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)

		target, err := repo.FindByIDForUpdate(ctx, targetID)
		if err != nil {
			if profiles.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load target")
		}

		actor, err := s.loadActor(ctx, repo, actorID)
		if err != nil {
			return err
		}
		if !roles.CanManage(actor, target) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the super admin can change roles")
		}

		apply(target)
		if err := repo.Update(ctx, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist target")
		}
		updated = target
		return nil
	})
	if err != nil {
		metrics.AdminActionsTotal.WithLabelValues(action, "rejected").Inc()
		return nil, err
	}

	metrics.AdminActionsTotal.WithLabelValues(action, "ok").Inc()
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"actor_profile_id":  actorID.String(),
			"target_profile_id": targetID.String(),
			"action":            action,
		})
		s.logg.Info(ctx, "role mutation applied")
	}
	return s.toDTO(ctx, updated)
}

func (s *service) SetAccountStatus(ctx context.Context, actorID, targetID uuid.UUID, status enums.AccountStatus) (*profiles.ProfileDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid account status")
	}

	var updated *models.Profile
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)

		target, err := repo.FindByIDForUpdate(ctx, targetID)
		if err != nil {
			if profiles.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "target profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load target")
		}

		actor, err := s.loadActor(ctx, repo, actorID)
		if err != nil {
			return err
		}
		if roles.EffectiveRank(actor) < roles.RankAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
		}
		// The super admin can never be archived or banned, by anyone,
		// through this path.
		if target.IsSuperAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "the super admin's standing cannot be changed")
		}

		target.Status = status
		if err := repo.Update(ctx, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist target")
		}
		updated = target
		return nil
	})
	if err != nil {
		metrics.AdminActionsTotal.WithLabelValues("set_status", "rejected").Inc()
		return nil, err
	}

	metrics.AdminActionsTotal.WithLabelValues("set_status", "ok").Inc()
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"actor_profile_id":  actorID.String(),
			"target_profile_id": targetID.String(),
			"status":            status.String(),
		})
		s.logg.Info(ctx, "account status changed")
	}
	return s.toDTO(ctx, updated)
}

// RequestPasswordReset delegates to the identity provider. Admins may
// request a reset for anyone; everyone may request their own.
func (s *service) RequestPasswordReset(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID != targetID {
		actor, err := s.profiles.FindByID(ctx, actorID)
		if err != nil {
			if profiles.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load actor")
		}
		if roles.EffectiveRank(actor) < roles.RankAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
		}
	}

	target, err := s.profiles.FindByID(ctx, targetID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "target profile not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load target")
	}

	creds, err := s.provider.FindByID(ctx, target.AccountID)
	if err != nil {
		return err
	}
	if err := s.provider.SendPasswordReset(ctx, creds.Email); err != nil {
		return err
	}
	metrics.AdminActionsTotal.WithLabelValues("reset_password", "ok").Inc()
	return nil
}

func (s *service) ListUsers(ctx context.Context, actorID uuid.UUID, req ListUsersRequest) (*profiles.ListPage, error) {
	actor, err := s.profiles.FindByID(ctx, actorID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load actor")
	}
	if roles.EffectiveRank(actor) < roles.RankAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin rank required")
	}

	filter := profiles.ListFilter{}
	if req.Status != "" {
		status := enums.AccountStatus(req.Status)
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = &status
	}
	if req.UserType != "" {
		userType := enums.UserType(req.UserType)
		if !userType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user type filter")
		}
		filter.UserType = &userType
	}

	entries, next, err := s.profiles.List(ctx, filter, pagination.Params{Limit: req.Limit, Cursor: req.Cursor})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list profiles")
	}
	return &profiles.ListPage{Profiles: entries, NextCursor: next}, nil
}

// loadActor re-reads the acting profile within the current transaction.
func (s *service) loadActor(ctx context.Context, repo profiles.Repository, actorID uuid.UUID) (*models.Profile, error) {
	actor, err := repo.FindByID(ctx, actorID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "acting profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load actor")
	}
	return actor, nil
}

func (s *service) toDTO(ctx context.Context, profile *models.Profile) (*profiles.ProfileDTO, error) {
	creds, err := s.provider.FindByID(ctx, profile.AccountID)
	if err != nil {
		return nil, err
	}
	return profiles.ToDTO(profile, creds.EmailVerified), nil
}
