// Package mailer is the dispatch-and-forget port for the transactional mail
// the identity provider sends. The engine never inspects delivery results,
// so the surface stays minimal.
package mailer

import (
	"context"
	"fmt"

	"github.com/scholarly-app/scholarly-backend/pkg/config"
	"github.com/scholarly-app/scholarly-backend/pkg/logger"
)

// Mailer sends the two transactional messages the lifecycle flows need.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes mail intents to the structured log instead of a wire.
// Dev/test default; a real delivery backend satisfies the same interface.
type LogMailer struct {
	cfg  config.MailerConfig
	logg *logger.Logger
}

// NewLogMailer constructs the logging mailer.
func NewLogMailer(cfg config.MailerConfig, logg *logger.Logger) *LogMailer {
	return &LogMailer{cfg: cfg, logg: logg}
}

func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	return m.dispatch(ctx, "verification", email, fmt.Sprintf("%s/confirm-email?token=%s", m.cfg.BaseURL, token))
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	return m.dispatch(ctx, "password_reset", email, fmt.Sprintf("%s/reset-password?token=%s", m.cfg.BaseURL, token))
}

func (m *LogMailer) dispatch(ctx context.Context, kind, email, link string) error {
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"mail_kind": kind,
			"mail_to":   email,
			"mail_from": m.cfg.FromAddress,
			"mail_link": link,
		})
		m.logg.Info(ctx, "mail.dispatched")
	}
	return nil
}
