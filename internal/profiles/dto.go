package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	"github.com/scholarly-app/scholarly-backend/pkg/roles"
)

// ProfileDTO is the transport shape for a profile record. Role and
// lifecycle_state are derived on the way out; the legacy boolean flags
// ride along for older clients.
type ProfileDTO struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	Role         enums.Role          `json:"role"`
	UserType     enums.UserType      `json:"user_type"`
	IsAdmin      bool                `json:"is_admin"`
	IsSuperAdmin bool                `json:"is_super_admin"`
	Status       enums.AccountStatus `json:"status"`

	LifecycleState      enums.LifecycleState `json:"lifecycle_state"`
	HasCompletedProfile bool                 `json:"has_completed_profile"`
	ActivatedAt         *time.Time           `json:"activated_at,omitempty"`

	City            *string  `json:"city,omitempty"`
	Phone           *string  `json:"phone,omitempty"`
	EducationLevel  *string  `json:"education_level,omitempty"`
	PreferredFields []string `json:"preferred_fields"`

	SubscriptionPlanID *uuid.UUID `json:"subscription_plan_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DirectoryEntry mixes profile data with the associated account metadata
// for admin directory listings.
type DirectoryEntry struct {
	ProfileDTO
	Email string `json:"email"`
}

// ListPage wraps a directory page together with its next-page cursor.
type ListPage struct {
	Profiles   []DirectoryEntry `json:"profiles"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

type directoryRow struct {
	models.Profile
	Email         string `gorm:"column:email"`
	EmailVerified bool   `gorm:"column:email_verified"`
}

func directoryFromRows(rows []directoryRow) []DirectoryEntry {
	out := make([]DirectoryEntry, 0, len(rows))
	for i := range rows {
		p := rows[i].Profile
		out = append(out, DirectoryEntry{
			ProfileDTO: *ToDTO(&p, rows[i].EmailVerified),
			Email:      rows[i].Email,
		})
	}
	return out
}

// StateOf derives the onboarding position from the verification and
// completion flags. EmailVerified comes from the account, the rest from
// the profile.
func StateOf(emailVerified bool, profile *models.Profile) enums.LifecycleState {
	if profile == nil {
		return enums.LifecycleCreated
	}
	if !emailVerified {
		return enums.LifecyclePendingVerification
	}
	if !profile.HasCompletedProfile {
		return enums.LifecycleProfileIncomplete
	}
	return enums.LifecycleActive
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.Profile, emailVerified bool) *ProfileDTO {
	if m == nil {
		return nil
	}

	return &ProfileDTO{
		ID:                  m.ID,
		AccountID:           m.AccountID,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		Role:                roles.RoleOf(m),
		UserType:            m.UserType,
		IsAdmin:             m.IsAdmin,
		IsSuperAdmin:        m.IsSuperAdmin,
		Status:              m.Status,
		LifecycleState:      StateOf(emailVerified, m),
		HasCompletedProfile: m.HasCompletedProfile,
		ActivatedAt:         copyTimePointer(m.ActivatedAt),
		City:                copyStringPointer(m.City),
		Phone:               copyStringPointer(m.Phone),
		EducationLevel:      copyStringPointer(m.EducationLevel),
		PreferredFields:     append([]string(nil), m.PreferredFields...),
		SubscriptionPlanID:  copyUUIDPointer(m.SubscriptionPlanID),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func copyStringPointer(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func copyTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}
