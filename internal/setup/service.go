// Package setup holds the one-time super admin bootstrap. The endpoint is
// gated by an out-of-band setup code and refuses to run once a super admin
// exists; the partial unique index on profiles backs the race.
package setup

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/metrics"
	"github.com/scholarly-app/scholarly-backend/pkg/security"
)

// BootstrapRequest carries the setup code and the super admin credentials.
type BootstrapRequest struct {
	SetupCode string `json:"setup_code" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// Service performs the super admin bootstrap.
type Service interface {
	Bootstrap(ctx context.Context, req BootstrapRequest) (*profiles.ProfileDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AccountWriter persists new accounts inside the bootstrap transaction.
type AccountWriter interface {
	Create(ctx context.Context, account *models.Account) error
}

// ServiceParams bundles the bootstrap dependencies. AccountsFor builds an
// account writer bound to the supplied transaction.
type ServiceParams struct {
	Profiles    profiles.Repository
	AccountsFor func(tx *gorm.DB) AccountWriter
	TxRunner    txRunner
	SetupCfg    config.SetupConfig
	PasswordCfg config.PasswordConfig
	Logger      *logger.Logger
}

type service struct {
	profiles    profiles.Repository
	accountsFor func(tx *gorm.DB) AccountWriter
	tx          txRunner
	setupCfg    config.SetupConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewService constructs the bootstrap service.
func NewService(params ServiceParams) (Service, error) {
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository is required")
	}
	if params.AccountsFor == nil {
		return nil, fmt.Errorf("account writer factory is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	return &service{
		profiles:    params.Profiles,
		accountsFor: params.AccountsFor,
		tx:          params.TxRunner,
		setupCfg:    params.SetupCfg,
		passwordCfg: params.PasswordCfg,
		logg:        params.Logger,
	}, nil
}

func (s *service) Bootstrap(ctx context.Context, req BootstrapRequest) (*profiles.ProfileDTO, error) {
	if s.setupCfg.Code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "setup is disabled")
	}
	if subtle.ConstantTimeCompare([]byte(req.SetupCode), []byte(s.setupCfg.Code)) != 1 {
		metrics.AdminActionsTotal.WithLabelValues("bootstrap", "rejected").Inc()
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "invalid setup code")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.Profile
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)

		exists, err := repo.SuperAdminExists(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check super admin")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "a super admin already exists")
		}

		account := &models.Account{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			PasswordHash: hash,
			// The bootstrap operator proved control of the deployment;
			// no verification mail round trip.
			EmailVerified: true,
		}
		if err := s.accountsFor(tx).Create(ctx, account); err != nil {
			if pkgerrors.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
		}

		now := time.Now().UTC()
		profile := &models.Profile{
			AccountID:           account.ID,
			FirstName:           strings.TrimSpace(req.FirstName),
			LastName:            strings.TrimSpace(req.LastName),
			UserType:            enums.UserTypeSuperAdmin,
			IsAdmin:             true,
			IsSuperAdmin:        true,
			Status:              enums.AccountStatusActive,
			HasCompletedProfile: true,
			ActivatedAt:         &now,
		}
		if err := repo.Create(ctx, profile); err != nil {
			// A concurrent bootstrap that won the race trips the partial
			// unique index here.
			if pkgerrors.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "a super admin already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
		}
		created = profile
		return nil
	})
	if err != nil {
		metrics.AdminActionsTotal.WithLabelValues("bootstrap", "failed").Inc()
		return nil, err
	}

	metrics.AdminActionsTotal.WithLabelValues("bootstrap", "ok").Inc()
	if s.logg != nil {
		s.logg.Info(s.logg.WithProfileID(ctx, created.ID.String()), "super admin bootstrapped")
	}
	return profiles.ToDTO(created, true), nil
}
