package middleware

import (
	"net/http"

	"github.com/scholarly-app/scholarly-backend/api/responses"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
)

// RequireRole rejects requests whose minted role ranks below the minimum.
// Services re-read the profile before acting; this guard only keeps plainly
// unauthorized traffic off admin routes.
func RequireRole(minimum enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if roleRank(enums.Role(RoleFromContext(r.Context()))) < roleRank(minimum) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "role required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is shorthand for the admin surface guard.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return RequireRole(enums.RoleAdmin, logg)
}

func roleRank(role enums.Role) int {
	switch role {
	case enums.RoleSuperAdmin:
		return 2
	case enums.RoleAdmin:
		return 1
	default:
		return 0
	}
}
