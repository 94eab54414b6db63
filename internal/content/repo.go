package content

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// Repository defines persistence operations for content items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.ContentItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	List(ctx context.Context, kind *enums.ContentKind, publishedOnly bool) ([]models.ContentItem, error)
	Update(ctx context.Context, item *models.ContentItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a content repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, kind *enums.ContentKind, publishedOnly bool) ([]models.ContentItem, error) {
	q := r.db.WithContext(ctx).Model(&models.ContentItem{})
	if kind != nil {
		q = q.Where("kind = ?", *kind)
	}
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var rows []models.ContentItem
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, item *models.ContentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ContentItem{}, "id = ?", id).Error
}

// IsNotFound reports whether the error is gorm's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
