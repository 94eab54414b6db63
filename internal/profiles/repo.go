package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a profiles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByIDForUpdate takes a row lock for the duration of the surrounding
// transaction. Callers must hold an open tx.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).First(&profile, "account_id = ?", accountID).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) Update(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *repository) SuperAdminExists(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("is_super_admin = ?", true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns a directory page joined with account metadata, newest
// first, along with the cursor for the next page.
func (r *repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]DirectoryEntry, string, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("profiles.*, accounts.email, accounts.email_verified").
		Joins("JOIN accounts ON accounts.id = profiles.account_id")

	if filter.Status != nil {
		q = q.Where("profiles.status = ?", *filter.Status)
	}
	if filter.UserType != nil {
		q = q.Where("profiles.user_type = ?", *filter.UserType)
	}
	if cur, err := pagination.ParseCursor(page.Cursor); err != nil {
		return nil, "", err
	} else if cur != nil {
		q = q.Where("(profiles.created_at, profiles.id) < (?, ?)", cur.CreatedAt, cur.ID)
	}

	limit := pagination.NormalizeLimit(page.Limit)

	var rows []directoryRow
	err := q.Order("profiles.created_at DESC, profiles.id DESC").
		Limit(limit + 1).
		Scan(&rows).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return directoryFromRows(rows), next, nil
}

// IsNotFound reports whether the error is gorm's missing-record error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
