// Package roles holds the pure authorization predicates. Every function is
// total: a nil or malformed profile ranks as a plain user, nothing panics.
package roles

import (
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// Rank values order the three roles: User < Admin < SuperAdmin.
const (
	RankUser       = 0
	RankAdmin      = 1
	RankSuperAdmin = 2
)

// RoleOf derives the single ordered role from a profile's stored flags. The
// boolean flags are authoritative; a drifted user_type string is ignored.
func RoleOf(profile *models.Profile) enums.Role {
	if profile == nil {
		return enums.RoleUser
	}
	if profile.IsSuperAdmin {
		return enums.RoleSuperAdmin
	}
	if profile.IsAdmin {
		return enums.RoleAdmin
	}
	return enums.RoleUser
}

// Rank maps the stored role to its ordinal.
func Rank(profile *models.Profile) int {
	switch RoleOf(profile) {
	case enums.RoleSuperAdmin:
		return RankSuperAdmin
	case enums.RoleAdmin:
		return RankAdmin
	default:
		return RankUser
	}
}

// EffectiveRank is Rank with standing applied: archived and banned profiles
// act as plain users until reinstated. The stored flags are never mutated,
// so restoring the status restores the privileges.
func EffectiveRank(profile *models.Profile) int {
	if profile == nil {
		return RankUser
	}
	if profile.Status != enums.AccountStatusActive {
		return RankUser
	}
	return Rank(profile)
}

// EffectiveRole is RoleOf with standing applied, mirroring EffectiveRank.
func EffectiveRole(profile *models.Profile) enums.Role {
	if profile == nil || profile.Status != enums.AccountStatusActive {
		return enums.RoleUser
	}
	return RoleOf(profile)
}

// CanManage reports whether actor may mutate target's role or standing.
// Only an acting super admin manages profiles, and no one manages the
// super admin itself.
func CanManage(actor, target *models.Profile) bool {
	if target == nil {
		return false
	}
	return EffectiveRank(actor) == RankSuperAdmin && !target.IsSuperAdmin
}

// CanModerateContent reports whether actor may mutate platform content
// (scholarships, announcements, ads, plan metadata).
func CanModerateContent(actor *models.Profile) bool {
	return EffectiveRank(actor) >= RankAdmin
}

// UserTypeFor returns the user_type string consistent with the role flags,
// falling back to the provided default for plain users. Role mutations call
// this so drifted rows heal on the next write.
func UserTypeFor(role enums.Role, fallback enums.UserType) enums.UserType {
	switch role {
	case enums.RoleSuperAdmin:
		return enums.UserTypeSuperAdmin
	case enums.RoleAdmin:
		return enums.UserTypeAdmin
	default:
		if fallback.IsValid() && !fallback.IsPrivileged() {
			return fallback
		}
		return enums.UserTypeStudent
	}
}
