// Package identity is the authentication port. The lifecycle and access
// control services talk to a Provider and never touch password hashes or
// verification tokens directly, so the local implementation can be swapped
// for a hosted identity service without touching the engine.
package identity

import (
	"context"

	"github.com/google/uuid"
)

// Credentials carries a registered account's engine-visible identity data.
type Credentials struct {
	AccountID     uuid.UUID
	Email         string
	EmailVerified bool
}

// Provider is the surface the engine depends on for authentication.
type Provider interface {
	// Register creates the account and dispatches the verification mail.
	Register(ctx context.Context, email, password string) (*Credentials, error)

	// Authenticate checks the password and returns the account on success.
	Authenticate(ctx context.Context, email, password string) (*Credentials, error)

	// ConfirmEmail consumes a one-shot verification token and marks the
	// account verified. The token is spent even when already verified.
	ConfirmEmail(ctx context.Context, token string) (*Credentials, error)

	// ResendVerification issues a fresh token for an unverified account.
	// It reports success for unknown and already-verified addresses alike.
	ResendVerification(ctx context.Context, email string) error

	// SendPasswordReset issues a one-shot reset token. Like resend, it
	// never discloses whether the address exists.
	SendPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes a reset token and replaces the password.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// FindByID looks up an account the engine already holds a reference to.
	FindByID(ctx context.Context, accountID uuid.UUID) (*Credentials, error)
}
