package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// Profile is the engine-owned record describing a person's role, standing,
// and onboarding completion. One-to-one with an Account; never hard-deleted
// while the account exists (archived/banned soft states instead).
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;column:account_id;not null;uniqueIndex"`

	FirstName string `gorm:"column:first_name;not null;default:''"`
	LastName  string `gorm:"column:last_name;not null;default:''"`

	UserType     enums.UserType      `gorm:"column:user_type;type:text;not null;default:'student'"`
	IsAdmin      bool                `gorm:"column:is_admin;not null;default:false"`
	IsSuperAdmin bool                `gorm:"column:is_super_admin;not null;default:false"`
	Status       enums.AccountStatus `gorm:"column:status;type:text;not null;default:'active'"`

	HasCompletedProfile bool       `gorm:"column:has_completed_profile;not null;default:false"`
	ActivatedAt         *time.Time `gorm:"column:activated_at"`

	City            *string        `gorm:"column:city"`
	Phone           *string        `gorm:"column:phone"`
	EducationLevel  *string        `gorm:"column:education_level"`
	PreferredFields pq.StringArray `gorm:"type:text[];column:preferred_fields;not null;default:ARRAY[]::text[]"`

	SubscriptionPlanID *uuid.UUID `gorm:"type:uuid;column:subscription_plan_id"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
