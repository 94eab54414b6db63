package lifecycle

import (
	"github.com/google/uuid"

	"github.com/scholarly-app/scholarly-backend/internal/profiles"
	"github.com/scholarly-app/scholarly-backend/pkg/enums"
)

// SignUpRequest carries the credentials plus the optional profile draft
// collected on the signup form.
type SignUpRequest struct {
	Email        string       `json:"email" validate:"required,email"`
	Password     string       `json:"password" validate:"required,min=8"`
	DraftProfile DraftProfile `json:"draft_profile"`
}

// DraftProfile seeds the profile row at signup. Everything is optional;
// the completion wizard collects the rest.
type DraftProfile struct {
	FirstName string         `json:"first_name" validate:"omitempty,max=100"`
	LastName  string         `json:"last_name" validate:"omitempty,max=100"`
	UserType  enums.UserType `json:"user_type" validate:"omitempty"`
}

// SignUpResponse reports the created account and its lifecycle position.
type SignUpResponse struct {
	AccountID uuid.UUID            `json:"account_id"`
	ProfileID uuid.UUID            `json:"profile_id"`
	State     enums.LifecycleState `json:"state"`
}

// ConfirmEmailRequest consumes a verification token.
type ConfirmEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ConfirmEmailResponse reports the post-confirmation lifecycle position.
type ConfirmEmailResponse struct {
	AccountID uuid.UUID            `json:"account_id"`
	State     enums.LifecycleState `json:"state"`
}

// ResendConfirmationRequest asks for a fresh verification mail.
type ResendConfirmationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SignInRequest carries login credentials.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse is the login payload: tokens plus the profile so clients
// can route to the wizard when completion is pending.
type SignInResponse struct {
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
	Profile      profiles.ProfileDTO  `json:"profile"`
	State        enums.LifecycleState `json:"state"`
}

// CompleteProfileRequest is the final wizard submission: all three logical
// groups arrive together and are validated as one unit.
type CompleteProfileRequest struct {
	// Group 1: identity and contact.
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	City      string `json:"city"`
	Phone     string `json:"phone"`

	// Group 2: education.
	EducationLevel string `json:"education_level"`

	// Group 3: interests.
	PreferredFields []string `json:"preferred_fields"`
}

// UpdateProfileRequest mutates the owner-editable profile fields. Nil
// pointers leave the stored value untouched.
type UpdateProfileRequest struct {
	FirstName       *string   `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName        *string   `json:"last_name" validate:"omitempty,min=1,max=100"`
	City            *string   `json:"city" validate:"omitempty,min=1,max=120"`
	Phone           *string   `json:"phone" validate:"omitempty,min=3,max=32"`
	EducationLevel  *string   `json:"education_level" validate:"omitempty,min=1,max=120"`
	PreferredFields *[]string `json:"preferred_fields" validate:"omitempty,min=1"`
}

// MissingFields is the ValidationError detail payload for the wizard.
type MissingFields struct {
	Fields []string `json:"fields"`
}
