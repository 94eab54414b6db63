package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/db/models"
	pkgerrors "github.com/scholarly-app/scholarly-backend/pkg/errors"
)

type stubAccounts struct {
	byEmail   map[string]*models.Account
	createErr error
	created   []*models.Account
	verified  []uuid.UUID
	rehashed  map[uuid.UUID]string
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{
		byEmail:  map[string]*models.Account{},
		rehashed: map[uuid.UUID]string{},
	}
}

func (s *stubAccounts) Create(_ context.Context, account *models.Account) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.byEmail[account.Email]; exists {
		return &pgconn.PgError{Code: "23505", ConstraintName: "idx_accounts_email"}
	}
	account.ID = uuid.New()
	s.byEmail[account.Email] = account
	s.created = append(s.created, account)
	return nil
}

func (s *stubAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	if account, ok := s.byEmail[email]; ok {
		return account, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAccounts) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	for _, account := range s.byEmail {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAccounts) MarkVerified(_ context.Context, id uuid.UUID) error {
	s.verified = append(s.verified, id)
	for _, account := range s.byEmail {
		if account.ID == id {
			account.EmailVerified = true
		}
	}
	return nil
}

func (s *stubAccounts) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.rehashed[id] = hash
	return nil
}

type stubTokens struct {
	values map[string]string
}

func newStubTokens() *stubTokens {
	return &stubTokens{values: map[string]string{}}
}

func (s *stubTokens) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.values[key] = value.(string)
	return nil
}

func (s *stubTokens) GetDel(_ context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	delete(s.values, key)
	return value, nil
}

func (s *stubTokens) OneShotTokenKey(purpose, token string) string {
	return "test:token:" + purpose + ":" + token
}

type stubMailer struct {
	verifications []string
	resets        []string
	tokens        []string
}

func (s *stubMailer) SendVerification(_ context.Context, email, token string) error {
	s.verifications = append(s.verifications, email)
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *stubMailer) SendPasswordReset(_ context.Context, email, token string) error {
	s.resets = append(s.resets, email)
	s.tokens = append(s.tokens, token)
	return nil
}

func fastPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      16,
	}
}

func newTestProvider(t *testing.T) (Provider, *stubAccounts, *stubTokens, *stubMailer) {
	t.Helper()
	accounts := newStubAccounts()
	tokens := newStubTokens()
	mail := &stubMailer{}
	provider, err := NewLocalProvider(ProviderParams{
		Accounts:    accounts,
		Tokens:      tokens,
		Mailer:      mail,
		PasswordCfg: fastPasswordConfig(),
		IdentityCfg: config.IdentityConfig{
			VerificationTokenTTL:  time.Hour,
			PasswordResetTokenTTL: time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}
	return provider, accounts, tokens, mail
}

func TestRegisterNormalizesEmailAndSendsVerification(t *testing.T) {
	provider, accounts, _, mail := newTestProvider(t)

	creds, err := provider.Register(context.Background(), "  Ada@Example.COM ", "s3cret-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if creds.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", creds.Email)
	}
	if creds.EmailVerified {
		t.Fatal("new accounts must start unverified")
	}
	if len(accounts.created) != 1 {
		t.Fatalf("expected one account created, got %d", len(accounts.created))
	}
	if !strings.HasPrefix(accounts.created[0].PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash, got %q", accounts.created[0].PasswordHash)
	}
	if len(mail.verifications) != 1 || mail.verifications[0] != "ada@example.com" {
		t.Fatalf("expected verification mail to ada@example.com, got %v", mail.verifications)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	provider, _, _, _ := newTestProvider(t)

	if _, err := provider.Register(context.Background(), "dup@example.com", "s3cret-password"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := provider.Register(context.Background(), "dup@example.com", "other-password")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	provider, _, _, _ := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.Register(ctx, "login@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	creds, err := provider.Authenticate(ctx, "login@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if creds.Email != "login@example.com" {
		t.Fatalf("unexpected email %q", creds.Email)
	}

	if _, err := provider.Authenticate(ctx, "login@example.com", "wrong"); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}
	if _, err := provider.Authenticate(ctx, "nobody@example.com", "whatever"); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestConfirmEmailConsumesTokenOnce(t *testing.T) {
	provider, accounts, _, mail := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.Register(ctx, "confirm@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(mail.tokens) != 1 {
		t.Fatalf("expected one token issued, got %d", len(mail.tokens))
	}
	token := mail.tokens[0]

	creds, err := provider.ConfirmEmail(ctx, token)
	if err != nil {
		t.Fatalf("ConfirmEmail: %v", err)
	}
	if !creds.EmailVerified {
		t.Fatal("expected account to be verified")
	}
	if len(accounts.verified) != 1 {
		t.Fatalf("expected one MarkVerified call, got %d", len(accounts.verified))
	}

	// Second use of the same link must fail.
	if _, err := provider.ConfirmEmail(ctx, token); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on token replay, got %v", err)
	}
}

func TestConfirmEmailRejectsUnknownToken(t *testing.T) {
	provider, _, _, _ := newTestProvider(t)

	_, err := provider.ConfirmEmail(context.Background(), "never-issued")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestResendVerificationIsUniform(t *testing.T) {
	provider, _, _, mail := newTestProvider(t)
	ctx := context.Background()

	if _, err := provider.Register(ctx, "pending@example.com", "s3cret-password"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	issued := len(mail.verifications)

	// Unknown address: success, no mail.
	if err := provider.ResendVerification(ctx, "ghost@example.com"); err != nil {
		t.Fatalf("ResendVerification unknown: %v", err)
	}
	if len(mail.verifications) != issued {
		t.Fatal("unknown address must not trigger mail")
	}

	// Known unverified address: success, one more mail.
	if err := provider.ResendVerification(ctx, "pending@example.com"); err != nil {
		t.Fatalf("ResendVerification known: %v", err)
	}
	if len(mail.verifications) != issued+1 {
		t.Fatal("expected a fresh verification mail")
	}

	// Already verified: success, no mail.
	if _, err := provider.ConfirmEmail(ctx, mail.tokens[len(mail.tokens)-1]); err != nil {
		t.Fatalf("ConfirmEmail: %v", err)
	}
	sent := len(mail.verifications)
	if err := provider.ResendVerification(ctx, "pending@example.com"); err != nil {
		t.Fatalf("ResendVerification verified: %v", err)
	}
	if len(mail.verifications) != sent {
		t.Fatal("verified address must not trigger mail")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	provider, accounts, _, mail := newTestProvider(t)
	ctx := context.Background()

	creds, err := provider.Register(ctx, "reset@example.com", "old-password")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := provider.SendPasswordReset(ctx, "reset@example.com"); err != nil {
		t.Fatalf("SendPasswordReset: %v", err)
	}
	if len(mail.resets) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(mail.resets))
	}
	token := mail.tokens[len(mail.tokens)-1]

	if err := provider.ResetPassword(ctx, token, "new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, ok := accounts.rehashed[creds.AccountID]; !ok {
		t.Fatal("expected password hash to be replaced")
	}

	// Token is single use.
	if err := provider.ResetPassword(ctx, token, "another"); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on reset token replay, got %v", err)
	}

	// Unknown address still reports success.
	if err := provider.SendPasswordReset(ctx, "ghost@example.com"); err != nil {
		t.Fatalf("SendPasswordReset unknown: %v", err)
	}
	if len(mail.resets) != 1 {
		t.Fatal("unknown address must not trigger reset mail")
	}
}
