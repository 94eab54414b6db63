// Package lifecycle drives accounts through signup, email confirmation,
// the completion wizard, and sign-in. State is never stored: it is derived
// from the verification and completion flags on every read.
package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/internal/identity"
	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	pkgauth "github.com/scholarly-app/scholarly-backend/pkg/auth"
	"github.com/scholarly-app/scholarly-backend/pkg/auth/session"
	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/metrics"
	"github.com/scholarly-app/scholarly-backend/pkg/roles"
)

// Service defines the lifecycle operations exposed to controllers.
type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error)
	ConfirmEmail(ctx context.Context, req ConfirmEmailRequest) (*ConfirmEmailResponse, error)
	ResendConfirmation(ctx context.Context, req ResendConfirmationRequest) error
	SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error)
	CompleteProfile(ctx context.Context, profileID uuid.UUID, req CompleteProfileRequest) (*profiles.ProfileDTO, error)
	UpdateProfile(ctx context.Context, actorProfileID, targetProfileID uuid.UUID, req UpdateProfileRequest) (*profiles.ProfileDTO, error)
	GetOwnProfile(ctx context.Context, profileID uuid.UUID) (*profiles.ProfileDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionGenerator interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

// ServiceParams bundles the dependencies of the lifecycle service.
type ServiceParams struct {
	Provider identity.Provider
	Profiles profiles.Repository
	TxRunner txRunner
	Sessions sessionGenerator
	JWTCfg   config.JWTConfig
	Logger   *logger.Logger
}

type service struct {
	provider identity.Provider
	profiles profiles.Repository
	tx       txRunner
	sessions sessionGenerator
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

// NewService constructs the lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profiles repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		provider: params.Provider,
		profiles: params.Profiles,
		tx:       params.TxRunner,
		sessions: params.Sessions,
		jwtCfg:   params.JWTCfg,
		logg:     params.Logger,
	}, nil
}

func (s *service) SignUp(ctx context.Context, req SignUpRequest) (*SignUpResponse, error) {
	draftType := req.DraftProfile.UserType
	if draftType == "" {
		draftType = enums.UserTypeStudent
	}
	if !draftType.IsValid() || draftType.IsPrivileged() {
		metrics.LifecycleTransitionsTotal.WithLabelValues("sign_up", "rejected").Inc()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid user type")
	}

	creds, err := s.provider.Register(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("sign_up", "rejected").Inc()
		return nil, err
	}

	profile := &models.Profile{
		AccountID: creds.AccountID,
		FirstName: strings.TrimSpace(req.DraftProfile.FirstName),
		LastName:  strings.TrimSpace(req.DraftProfile.LastName),
		UserType:  draftType,
		Status:    enums.AccountStatusActive,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.profiles.WithTx(tx).Create(ctx, profile)
	})
	if err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("sign_up", "failed").Inc()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("sign_up", "ok").Inc()
	if s.logg != nil {
		s.logg.Info(s.logg.WithProfileID(ctx, profile.ID.String()), "account signed up")
	}
	return &SignUpResponse{
		AccountID: creds.AccountID,
		ProfileID: profile.ID,
		State:     enums.LifecyclePendingVerification,
	}, nil
}

func (s *service) ConfirmEmail(ctx context.Context, req ConfirmEmailRequest) (*ConfirmEmailResponse, error) {
	creds, err := s.provider.ConfirmEmail(ctx, req.Token)
	if err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("confirm_email", "rejected").Inc()
		return nil, err
	}

	profile, err := s.profiles.FindByAccount(ctx, creds.AccountID)
	if err != nil {
		// Sign-up writes the profile row before any confirmation mail can
		// be acted on, so a verified account without one is a broken row,
		// not a lifecycle position.
		metrics.LifecycleTransitionsTotal.WithLabelValues("confirm_email", "failed").Inc()
		if profiles.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "no profile for confirmed account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find profile")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("confirm_email", "ok").Inc()
	return &ConfirmEmailResponse{
		AccountID: creds.AccountID,
		State:     profiles.StateOf(true, profile),
	}, nil
}

func (s *service) ResendConfirmation(ctx context.Context, req ResendConfirmationRequest) error {
	return s.provider.ResendVerification(ctx, req.Email)
}

func (s *service) SignIn(ctx context.Context, req SignInRequest) (*SignInResponse, error) {
	creds, err := s.provider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("sign_in", "rejected").Inc()
		return nil, err
	}

	profile, err := s.profiles.FindByAccount(ctx, creds.AccountID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find profile")
	}
	if profile.Status == enums.AccountStatusBanned {
		metrics.LifecycleTransitionsTotal.WithLabelValues("sign_in", "banned").Inc()
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is banned")
	}

	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		AccountID:       creds.AccountID,
		ProfileID:       profile.ID,
		Role:            roles.EffectiveRole(profile),
		ProfileComplete: profile.HasCompletedProfile,
		JTI:             accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("sign_in", "ok").Inc()
	return &SignInResponse{
		AccessToken:  token,
		RefreshToken: refresh,
		Profile:      *profiles.ToDTO(profile, creds.EmailVerified),
		State:        profiles.StateOf(creds.EmailVerified, profile),
	}, nil
}

// CompleteProfile is the final wizard submission. All required fields
// across the three groups are checked together; nothing is persisted
// unless every one is present, and the flag flips at most once.
func (s *service) CompleteProfile(ctx context.Context, profileID uuid.UUID, req CompleteProfileRequest) (*profiles.ProfileDTO, error) {
	if missing := missingRequiredFields(req); len(missing) > 0 {
		metrics.LifecycleTransitionsTotal.WithLabelValues("complete_profile", "rejected").Inc()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "required profile fields are missing").
			WithDetails(MissingFields{Fields: missing})
	}

	var updated *models.Profile
	var emailVerified bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)
		profile, err := repo.FindByIDForUpdate(ctx, profileID)
		if err != nil {
			if profiles.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}

		creds, err := s.provider.FindByID(ctx, profile.AccountID)
		if err != nil {
			return err
		}
		if !creds.EmailVerified {
			return pkgerrors.New(pkgerrors.CodeForbidden, "email must be verified before completing the profile")
		}
		emailVerified = true

		city := strings.TrimSpace(req.City)
		phone := strings.TrimSpace(req.Phone)
		education := strings.TrimSpace(req.EducationLevel)

		profile.FirstName = strings.TrimSpace(req.FirstName)
		profile.LastName = strings.TrimSpace(req.LastName)
		profile.City = &city
		profile.Phone = &phone
		profile.EducationLevel = &education
		profile.PreferredFields = append([]string(nil), req.PreferredFields...)
		if !profile.HasCompletedProfile {
			profile.HasCompletedProfile = true
			now := time.Now().UTC()
			profile.ActivatedAt = &now
		}

		if err := repo.Update(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist profile")
		}
		updated = profile
		return nil
	})
	if err != nil {
		metrics.LifecycleTransitionsTotal.WithLabelValues("complete_profile", "failed").Inc()
		return nil, err
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("complete_profile", "ok").Inc()
	if s.logg != nil {
		s.logg.Info(s.logg.WithProfileID(ctx, profileID.String()), "profile completed")
	}
	return profiles.ToDTO(updated, emailVerified), nil
}

func (s *service) UpdateProfile(ctx context.Context, actorProfileID, targetProfileID uuid.UUID, req UpdateProfileRequest) (*profiles.ProfileDTO, error) {
	if actorProfileID != targetProfileID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "profiles can only be edited by their owner")
	}

	var updated *models.Profile
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.profiles.WithTx(tx)
		profile, err := repo.FindByIDForUpdate(ctx, targetProfileID)
		if err != nil {
			if profiles.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}
		// Edits go through the wizard until the profile is complete.
		if !profile.HasCompletedProfile {
			return pkgerrors.New(pkgerrors.CodeProfileIncomplete, "complete your profile to continue")
		}

		applyProfileUpdates(profile, req)

		if err := repo.Update(ctx, profile); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist profile")
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	creds, err := s.provider.FindByID(ctx, updated.AccountID)
	if err != nil {
		return nil, err
	}
	return profiles.ToDTO(updated, creds.EmailVerified), nil
}

func (s *service) GetOwnProfile(ctx context.Context, profileID uuid.UUID) (*profiles.ProfileDTO, error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if profiles.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	creds, err := s.provider.FindByID(ctx, profile.AccountID)
	if err != nil {
		return nil, err
	}
	return profiles.ToDTO(profile, creds.EmailVerified), nil
}

// missingRequiredFields lists every absent required field so the wizard
// can surface them all in one round trip.
func missingRequiredFields(req CompleteProfileRequest) []string {
	missing := []string{}
	if strings.TrimSpace(req.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(req.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(req.City) == "" {
		missing = append(missing, "city")
	}
	if strings.TrimSpace(req.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(req.EducationLevel) == "" {
		missing = append(missing, "education_level")
	}
	hasField := false
	for _, f := range req.PreferredFields {
		if strings.TrimSpace(f) != "" {
			hasField = true
			break
		}
	}
	if !hasField {
		missing = append(missing, "preferred_fields")
	}
	sort.Strings(missing)
	return missing
}

func applyProfileUpdates(profile *models.Profile, req UpdateProfileRequest) {
	if req.FirstName != nil {
		profile.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		profile.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.City != nil {
		city := strings.TrimSpace(*req.City)
		profile.City = &city
	}
	if req.Phone != nil {
		phone := strings.TrimSpace(*req.Phone)
		profile.Phone = &phone
	}
	if req.EducationLevel != nil {
		education := strings.TrimSpace(*req.EducationLevel)
		profile.EducationLevel = &education
	}
	if req.PreferredFields != nil {
		profile.PreferredFields = append([]string(nil), (*req.PreferredFields)...)
	}
}
