package content

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/pagination"
)

type stubContent struct {
	byID map[uuid.UUID]*models.ContentItem
}

func newStubContent() *stubContent {
	return &stubContent{byID: map[uuid.UUID]*models.ContentItem{}}
}

func (s *stubContent) WithTx(*gorm.DB) Repository { return s }

func (s *stubContent) Create(_ context.Context, item *models.ContentItem) error {
	item.ID = uuid.New()
	s.byID[item.ID] = item
	return nil
}

func (s *stubContent) FindByID(_ context.Context, id uuid.UUID) (*models.ContentItem, error) {
	if item, ok := s.byID[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubContent) List(_ context.Context, kind *enums.ContentKind, publishedOnly bool) ([]models.ContentItem, error) {
	var rows []models.ContentItem
	for _, item := range s.byID {
		if kind != nil && item.Kind != *kind {
			continue
		}
		if publishedOnly && !item.IsPublished {
			continue
		}
		rows = append(rows, *item)
	}
	return rows, nil
}

func (s *stubContent) Update(_ context.Context, item *models.ContentItem) error {
	copied := *item
	s.byID[item.ID] = &copied
	return nil
}

func (s *stubContent) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubProfiles struct {
	byID map[uuid.UUID]*models.Profile
}

func (s *stubProfiles) WithTx(*gorm.DB) profiles.Repository { return s }

func (s *stubProfiles) Create(context.Context, *models.Profile) error { return nil }

func (s *stubProfiles) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	if profile, ok := s.byID[id]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfiles) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return s.FindByID(ctx, id)
}

func (s *stubProfiles) FindByAccount(context.Context, uuid.UUID) (*models.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfiles) Update(context.Context, *models.Profile) error { return nil }

func (s *stubProfiles) SuperAdminExists(context.Context) (bool, error) { return false, nil }

func (s *stubProfiles) List(context.Context, profiles.ListFilter, pagination.Params) ([]profiles.DirectoryEntry, string, error) {
	return nil, "", nil
}

func newTestService(t *testing.T) (Service, *stubContent, *stubProfiles) {
	t.Helper()
	contentRepo := newStubContent()
	profileRepo := &stubProfiles{byID: map[uuid.UUID]*models.Profile{}}
	svc, err := NewService(ServiceParams{Content: contentRepo, Profiles: profileRepo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, contentRepo, profileRepo
}

func seed(repo *stubProfiles, isAdmin bool, status enums.AccountStatus) *models.Profile {
	profile := &models.Profile{
		ID:                  uuid.New(),
		AccountID:           uuid.New(),
		IsAdmin:             isAdmin,
		Status:              status,
		HasCompletedProfile: true,
	}
	repo.byID[profile.ID] = profile
	return profile
}

func TestCreateRequiresModerator(t *testing.T) {
	svc, _, profileRepo := newTestService(t)
	user := seed(profileRepo, false, enums.AccountStatusActive)

	req := CreateItemRequest{Kind: enums.ContentKindScholarship, Title: "STEM grant"}
	if _, err := svc.Create(context.Background(), user.ID, req); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for plain user, got %v", err)
	}

	admin := seed(profileRepo, true, enums.AccountStatusActive)
	dto, err := svc.Create(context.Background(), admin.ID, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Kind != enums.ContentKindScholarship || dto.IsPublished {
		t.Fatalf("unexpected item %+v", dto)
	}
	if dto.CreatedBy != admin.ID {
		t.Fatal("created_by must record the actor")
	}
}

func TestArchivedAdminCannotModerate(t *testing.T) {
	svc, _, profileRepo := newTestService(t)
	archived := seed(profileRepo, true, enums.AccountStatusArchived)

	req := CreateItemRequest{Kind: enums.ContentKindAnnouncement, Title: "Maintenance window"}
	if _, err := svc.Create(context.Background(), archived.ID, req); pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for archived admin, got %v", err)
	}
}

func TestUpdateAndPublish(t *testing.T) {
	svc, contentRepo, profileRepo := newTestService(t)
	admin := seed(profileRepo, true, enums.AccountStatusActive)

	dto, err := svc.Create(context.Background(), admin.ID, CreateItemRequest{Kind: enums.ContentKindAd, Title: "Partner spot"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	published := true
	dto, err = svc.Update(context.Background(), admin.ID, dto.ID, UpdateItemRequest{IsPublished: &published})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !dto.IsPublished {
		t.Fatal("expected published item")
	}

	if err := svc.Delete(context.Background(), admin.ID, dto.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(contentRepo.byID) != 0 {
		t.Fatal("expected item removed")
	}

	if err := svc.Delete(context.Background(), admin.ID, dto.ID); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFiltersKindAndPublication(t *testing.T) {
	svc, _, profileRepo := newTestService(t)
	admin := seed(profileRepo, true, enums.AccountStatusActive)
	ctx := context.Background()

	a, _ := svc.Create(ctx, admin.ID, CreateItemRequest{Kind: enums.ContentKindScholarship, Title: "One"})
	if _, err := svc.Create(ctx, admin.ID, CreateItemRequest{Kind: enums.ContentKindAnnouncement, Title: "Two"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	published := true
	if _, err := svc.Update(ctx, admin.ID, a.ID, UpdateItemRequest{IsPublished: &published}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	kind := enums.ContentKindScholarship
	rows, err := svc.List(ctx, &kind, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].Title != "One" {
		t.Fatalf("expected the published scholarship only, got %v", rows)
	}
}
