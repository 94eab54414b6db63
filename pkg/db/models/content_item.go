package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// ContentItem is a moderated platform record (scholarship, announcement, ad).
// The engine cares about its authorization gate, not its semantics.
type ContentItem struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Kind        enums.ContentKind `gorm:"column:kind;type:text;not null"`
	Title       string            `gorm:"column:title;not null"`
	Body        string            `gorm:"column:body;not null;default:''"`
	IsPublished bool              `gorm:"column:is_published;not null;default:false"`
	CreatedBy   uuid.UUID         `gorm:"type:uuid;column:created_by;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
