package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	"github.com/scholarly-app/scholarly-backend/pkg/pagination"
)

// Repository defines persistence operations for profile records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	SuperAdminExists(ctx context.Context) (bool, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]DirectoryEntry, string, error)
}

// ListFilter narrows directory listings.
type ListFilter struct {
	Status   *enums.AccountStatus
	UserType *enums.UserType
}
