package plans

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/featuregate"
	"github.com/scholarly-app/scholarly-backend/pkg/pagination"
)

type stubPlans struct {
	byID        map[uuid.UUID]*models.SubscriptionPlan
	subscribers map[uuid.UUID]int64
	deleted     []uuid.UUID
}

func newStubPlans() *stubPlans {
	return &stubPlans{
		byID:        map[uuid.UUID]*models.SubscriptionPlan{},
		subscribers: map[uuid.UUID]int64{},
	}
}

func (s *stubPlans) WithTx(*gorm.DB) Repository { return s }

func (s *stubPlans) Create(_ context.Context, plan *models.SubscriptionPlan) error {
	plan.ID = uuid.New()
	s.byID[plan.ID] = plan
	return nil
}

func (s *stubPlans) FindByID(_ context.Context, id uuid.UUID) (*models.SubscriptionPlan, error) {
	if plan, ok := s.byID[id]; ok {
		copied := *plan
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPlans) List(_ context.Context, activeOnly bool) ([]models.SubscriptionPlan, error) {
	var rows []models.SubscriptionPlan
	for _, plan := range s.byID {
		if activeOnly && !plan.IsActive {
			continue
		}
		rows = append(rows, *plan)
	}
	return rows, nil
}

func (s *stubPlans) Update(_ context.Context, plan *models.SubscriptionPlan) error {
	copied := *plan
	s.byID[plan.ID] = &copied
	return nil
}

func (s *stubPlans) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPlans) CountSubscribers(_ context.Context, planID uuid.UUID) (int64, error) {
	return s.subscribers[planID], nil
}

type stubProfiles struct {
	byID map[uuid.UUID]*models.Profile
}

func newStubProfiles() *stubProfiles {
	return &stubProfiles{byID: map[uuid.UUID]*models.Profile{}}
}

func (s *stubProfiles) WithTx(*gorm.DB) profiles.Repository { return s }

func (s *stubProfiles) Create(_ context.Context, profile *models.Profile) error {
	profile.ID = uuid.New()
	s.byID[profile.ID] = profile
	return nil
}

func (s *stubProfiles) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if profile, ok := s.byID[id]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfiles) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.FindByID(ctx, id)
}

func (s *stubProfiles) FindByAccount(context.Context, uuid.UUID) (*models.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfiles) Update(_ context.Context, profile *models.Profile) error {
	s.byID[profile.ID] = profile
	return nil
}

func (s *stubProfiles) SuperAdminExists(context.Context) (bool, error) { return false, nil }

func (s *stubProfiles) List(context.Context, profiles.ListFilter, pagination.Params) ([]profiles.DirectoryEntry, string, error) {
	return nil, "", nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc      Service
	plans    *stubPlans
	profiles *stubProfiles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	plansRepo := newStubPlans()
	profileRepo := newStubProfiles()
	svc, err := NewService(ServiceParams{
		Plans:    plansRepo,
		Profiles: profileRepo,
		Gate:     featuregate.New([]string{"profile", "scholarship_search"}),
		TxRunner: stubTxRunner{},
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, plans: plansRepo, profiles: profileRepo}
}

func (f *fixture) seedProfile(mutate func(*models.Profile)) *models.Profile {
	profile := &models.Profile{
		ID:                  uuid.New(),
		AccountID:           uuid.New(),
		UserType:            enums.UserTypeStudent,
		Status:              enums.AccountStatusActive,
		HasCompletedProfile: true,
	}
	if mutate != nil {
		mutate(profile)
	}
	f.profiles.byID[profile.ID] = profile
	return profile
}

func (f *fixture) seedSuper() *models.Profile {
	return f.seedProfile(func(p *models.Profile) {
		p.IsAdmin = true
		p.IsSuperAdmin = true
		p.UserType = enums.UserTypeSuperAdmin
	})
}

func (f *fixture) seedAdmin() *models.Profile {
	return f.seedProfile(func(p *models.Profile) {
		p.IsAdmin = true
		p.UserType = enums.UserTypeAdmin
	})
}

func (f *fixture) seedPlan(trialDays int, features ...string) *models.SubscriptionPlan {
	plan := &models.SubscriptionPlan{
		ID:           uuid.New(),
		Name:         "premium",
		PriceAmount:  decimal.NewFromInt(29),
		CurrencyCode: "USD",
		TrialDays:    trialDays,
		Features:     features,
		IsActive:     true,
	}
	f.plans.byID[plan.ID] = plan
	return plan
}

func validCreate() CreatePlanRequest {
	return CreatePlanRequest{
		Name:         "premium",
		PriceAmount:  decimal.NewFromInt(29),
		CurrencyCode: "usd",
		TrialDays:    14,
		Features:     []string{"profile", "scholarship_search", "mentor_chat"},
	}
}

func TestCreatePlanRequiresSuperAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAdmin()

	if _, err := f.svc.Create(context.Background(), admin.ID, validCreate()); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for admin, got %v", err)
	}

	super := f.seedSuper()
	dto, err := f.svc.Create(context.Background(), super.ID, validCreate())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.CurrencyCode != "USD" {
		t.Fatalf("currency must be normalized, got %s", dto.CurrencyCode)
	}
	if !dto.IsActive {
		t.Fatal("new plans start active")
	}
}

func TestUpdatePlanFieldGating(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAdmin()
	super := f.seedSuper()
	plan := f.seedPlan(14, "a", "b")

	// Admins may rename and toggle activation.
	name := "premium-2024"
	dto, err := f.svc.Update(context.Background(), admin.ID, plan.ID, UpdatePlanRequest{Name: &name})
	if err != nil {
		t.Fatalf("admin rename: %v", err)
	}
	if dto.Name != "premium-2024" {
		t.Fatalf("expected rename, got %s", dto.Name)
	}

	// Pricing edits are super admin territory.
	price := decimal.NewFromInt(49)
	if _, err := f.svc.Update(context.Background(), admin.ID, plan.ID, UpdatePlanRequest{PriceAmount: &price}); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for admin price edit, got %v", err)
	}
	dto, err = f.svc.Update(context.Background(), super.ID, plan.ID, UpdatePlanRequest{PriceAmount: &price})
	if err != nil {
		t.Fatalf("super price edit: %v", err)
	}
	if !dto.PriceAmount.Equal(price) {
		t.Fatalf("expected price 49, got %s", dto.PriceAmount)
	}

	// Same for feature list and trial edits.
	features := []string{"a", "b", "c"}
	if _, err := f.svc.Update(context.Background(), admin.ID, plan.ID, UpdatePlanRequest{Features: &features}); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for admin feature edit, got %v", err)
	}
}

func TestDeletePlanBlockedBySubscribers(t *testing.T) {
	f := newFixture(t)
	super := f.seedSuper()
	plan := f.seedPlan(0, "a")
	f.plans.subscribers[plan.ID] = 3

	if err := f.svc.Delete(context.Background(), super.ID, plan.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	f.plans.subscribers[plan.ID] = 0
	if err := f.svc.Delete(context.Background(), super.ID, plan.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.plans.deleted) != 1 {
		t.Fatalf("expected one deletion, got %d", len(f.plans.deleted))
	}
}

func TestVisibleFeaturesTrialWindow(t *testing.T) {
	f := newFixture(t)
	plan := f.seedPlan(14, "a", "b", "c")

	recent := time.Now().UTC().Add(-24 * time.Hour)
	inTrial := f.seedProfile(func(p *models.Profile) {
		p.SubscriptionPlanID = &plan.ID
		p.ActivatedAt = &recent
	})

	set, err := f.svc.VisibleFeatures(context.Background(), inTrial.ID)
	if err != nil {
		t.Fatalf("VisibleFeatures: %v", err)
	}
	if !set.InTrial {
		t.Fatal("expected trial to be open")
	}
	if !reflect.DeepEqual(set.Features, []string{"a", "b", "c"}) {
		t.Fatalf("expected full plan features, got %v", set.Features)
	}

	// Trial lapsed: fallback set.
	old := time.Now().UTC().AddDate(0, 0, -30)
	lapsed := f.seedProfile(func(p *models.Profile) {
		p.SubscriptionPlanID = &plan.ID
		p.ActivatedAt = &old
	})
	set, err = f.svc.VisibleFeatures(context.Background(), lapsed.ID)
	if err != nil {
		t.Fatalf("VisibleFeatures lapsed: %v", err)
	}
	if set.InTrial {
		t.Fatal("trial must be closed")
	}
	if !reflect.DeepEqual(set.Features, []string{"profile", "scholarship_search"}) {
		t.Fatalf("expected fallback features, got %v", set.Features)
	}

	// No plan at all: fallback set.
	free := f.seedProfile(nil)
	set, err = f.svc.VisibleFeatures(context.Background(), free.ID)
	if err != nil {
		t.Fatalf("VisibleFeatures free: %v", err)
	}
	if !reflect.DeepEqual(set.Features, []string{"profile", "scholarship_search"}) {
		t.Fatalf("expected fallback features, got %v", set.Features)
	}
}
