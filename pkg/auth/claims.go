package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID       uuid.UUID
	ProfileID       uuid.UUID
	Role            enums.Role
	ProfileComplete bool
	JTI             string
}

// AccessTokenClaims represents the typed JWT issued to clients. Role and the
// completion flag reflect mint time; engine decisions re-read the profile.
type AccessTokenClaims struct {
	AccountID       uuid.UUID  `json:"account_id"`
	ProfileID       uuid.UUID  `json:"profile_id"`
	Role            enums.Role `json:"role"`
	ProfileComplete bool       `json:"profile_complete"`
	jwt.RegisteredClaims
}
