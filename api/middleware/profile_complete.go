package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/api/responses"
	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
)

// ProfileSource loads the persisted profile for the acting identity.
type ProfileSource interface {
	GetOwnProfile(ctx context.Context, profileID uuid.UUID) (*profiles.ProfileDTO, error)
}

// RequireCompletedProfile blocks gated routes until the wizard has been
// completed. The token claim is only trusted when it says complete; an
// incomplete claim is re-checked against the store, so a profile finished
// after the token was minted is not locked out until the next sign-in.
func RequireCompletedProfile(src ProfileSource, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ProfileCompleteFromContext(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}

			if src != nil {
				profileID, err := uuid.Parse(ProfileIDFromContext(r.Context()))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "profile context missing"))
					return
				}
				dto, err := src.GetOwnProfile(r.Context(), profileID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				if dto.HasCompletedProfile {
					next.ServeHTTP(w, r.WithContext(WithProfileComplete(r.Context(), true)))
					return
				}
			}

			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeProfileIncomplete, "complete your profile to continue"))
		})
	}
}
