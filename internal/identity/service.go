package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
	"github.com/scholarly-app/scholarly-backend/pkg/mailer"
	"github.com/scholarly-app/scholarly-backend/pkg/security"
)

const (
	purposeVerify = "verify"
	purposeReset  = "reset"

	invalidCredentialsMessage = "invalid credentials"
	invalidTokenMessage       = "token is invalid or has expired"
)

type accountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	OneShotTokenKey(purpose, token string) string
}

// ProviderParams bundles the dependencies of the local identity provider.
type ProviderParams struct {
	Accounts    accountRepository
	Tokens      tokenStore
	Mailer      mailer.Mailer
	PasswordCfg config.PasswordConfig
	IdentityCfg config.IdentityConfig
	Logger      *logger.Logger
}

type localProvider struct {
	accounts    accountRepository
	tokens      tokenStore
	mail        mailer.Mailer
	passwordCfg config.PasswordConfig
	identityCfg config.IdentityConfig
	logg        *logger.Logger
}

// NewLocalProvider builds the database-backed Provider implementation.
func NewLocalProvider(params ProviderParams) (Provider, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("account repository is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	return &localProvider{
		accounts:    params.Accounts,
		tokens:      params.Tokens,
		mail:        params.Mailer,
		passwordCfg: params.PasswordCfg,
		identityCfg: params.IdentityCfg,
		logg:        params.Logger,
	}, nil
}

func (p *localProvider) Register(ctx context.Context, email, password string) (*Credentials, error) {
	normalized := normalizeEmail(email)

	hash, err := security.HashPassword(password, p.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	account := &models.Account{
		Email:        normalized,
		PasswordHash: hash,
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		if pkgerrors.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create account")
	}

	p.dispatchVerification(ctx, account)
	return credentialsOf(account), nil
}

func (p *localProvider) Authenticate(ctx context.Context, email, password string) (*Credentials, error) {
	account, err := p.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return credentialsOf(account), nil
}

func (p *localProvider) ConfirmEmail(ctx context.Context, token string) (*Credentials, error) {
	accountID, err := p.consumeToken(ctx, purposeVerify, token)
	if err != nil {
		return nil, err
	}

	account, err := p.accounts.FindByID(ctx, accountID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}

	if !account.EmailVerified {
		if err := p.accounts.MarkVerified(ctx, account.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark verified")
		}
		account.EmailVerified = true
	}
	return credentialsOf(account), nil
}

func (p *localProvider) ResendVerification(ctx context.Context, email string) error {
	account, err := p.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if IsNotFound(err) {
			// Unknown addresses get the same outcome as known ones.
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}
	if account.EmailVerified {
		return nil
	}

	p.dispatchVerification(ctx, account)
	return nil
}

func (p *localProvider) SendPasswordReset(ctx context.Context, email string) error {
	account, err := p.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}

	token, err := p.issueToken(ctx, purposeReset, account.ID, p.identityCfg.PasswordResetTokenTTL)
	if err != nil {
		return err
	}
	if err := p.mail.SendPasswordReset(ctx, account.Email, token); err != nil && p.logg != nil {
		p.logg.Error(ctx, "send password reset mail", err)
	}
	return nil
}

func (p *localProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	accountID, err := p.consumeToken(ctx, purposeReset, token)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword, p.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := p.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	return nil
}

func (p *localProvider) FindByID(ctx context.Context, accountID uuid.UUID) (*Credentials, error) {
	account, err := p.accounts.FindByID(ctx, accountID)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find account")
	}
	return credentialsOf(account), nil
}

// issueToken mints a single-use token bound to the account with the
// purpose-specific TTL.
func (p *localProvider) issueToken(ctx context.Context, purpose string, accountID uuid.UUID, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	key := p.tokens.OneShotTokenKey(purpose, token)
	if err := p.tokens.Set(ctx, key, accountID.String(), ttl); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store token")
	}
	return token, nil
}

// consumeToken spends the token atomically; a second use finds nothing.
func (p *localProvider) consumeToken(ctx context.Context, purpose, token string) (uuid.UUID, error) {
	key := p.tokens.OneShotTokenKey(purpose, strings.TrimSpace(token))
	value, err := p.tokens.GetDel(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read token")
	}
	accountID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidTokenMessage)
	}
	return accountID, nil
}

func (p *localProvider) dispatchVerification(ctx context.Context, account *models.Account) {
	token, err := p.issueToken(ctx, purposeVerify, account.ID, p.identityCfg.VerificationTokenTTL)
	if err != nil {
		if p.logg != nil {
			p.logg.Error(ctx, "issue verification token", err)
		}
		return
	}
	if err := p.mail.SendVerification(ctx, account.Email, token); err != nil && p.logg != nil {
		p.logg.Error(ctx, "send verification mail", err)
	}
}

func credentialsOf(account *models.Account) *Credentials {
	return &Credentials{
		AccountID:     account.ID,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
