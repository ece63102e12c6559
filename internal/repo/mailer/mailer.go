package mailer

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/aitwy/aitwy-server/internal/config"
	"github.com/aitwy/aitwy-server/internal/models"
	"github.com/aitwy/aitwy-server/pkg/logger"
	"github.com/aitwy/aitwy-server/pkg/tmplx"
	"github.com/aitwy/aitwy-server/pkg/util"
)

type Mailer interface {
	SendVerificationEmail(ctx context.Context, user *models.User, token string) error
	SendWelcomeEmail(ctx context.Context, user *models.User) error
}

var mailSent = util.MustCounterVec("mail_sent_total", "Emails handed to the mail transport", "template", "outcome")

type mailer struct {
	sender          Sender
	from            string
	frontendURL     string
	verificationTTL time.Duration
}

func New(sender Sender, cfg *config.Config) Mailer {
	return &mailer{
		sender:          sender,
		from:            cfg.Email.From,
		frontendURL:     cfg.FrontendURL,
		verificationTTL: cfg.Auth.VerificationTTL,
	}
}

// NewSender picks SMTP delivery when credentials are configured and the log
// sender otherwise.
func NewSender(cfg *config.Config) (Sender, error) {
	if !cfg.Email.HasCredentials() {
		return NewLogSender(logger.Named("mailer")), nil
	}
	return NewSMTPSender(cfg.Email)
}

func VerificationURL(frontendURL, token string) string {
	return frontendURL + "/verify-email?token=" + url.QueryEscape(token)
}

func (m *mailer) SendVerificationEmail(ctx context.Context, user *models.User, token string) error {
	data := verificationData{
		Name:       user.Name,
		URL:        VerificationURL(m.frontendURL, token),
		ValidHours: int(m.verificationTTL.Hours()),
	}
	return m.send(ctx, "verification", user.Email, verificationSubject, verificationText, verificationHTML, data)
}

func (m *mailer) SendWelcomeEmail(ctx context.Context, user *models.User) error {
	data := welcomeData{
		Name:     user.Name,
		LoginURL: m.frontendURL + "/login",
	}
	return m.send(ctx, "welcome", user.Email, welcomeSubject, welcomeText, welcomeHTML, data)
}

func (m *mailer) send(ctx context.Context, name, to, subject string, text, html *tmplx.Template, data any) error {
	textBody, err := text.RenderString(data)
	if err != nil {
		return fmt.Errorf("render %s text: %w", name, err)
	}
	htmlBody, err := html.RenderString(data)
	if err != nil {
		return fmt.Errorf("render %s html: %w", name, err)
	}

	err = m.sender.Send(ctx, Message{
		From:    m.from,
		To:      to,
		Subject: subject,
		Text:    textBody,
		HTML:    htmlBody,
	})
	if err != nil {
		mailSent.WithLabelValues(name, "error").Inc()
		logger.Errorw(ctx, "failed to send email", "template", name, "to", to, "error", err)
		return fmt.Errorf("%w: %w", models.ErrSendEmail, err)
	}
	mailSent.WithLabelValues(name, "ok").Inc()
	logger.Infow(ctx, "email sent", "template", name, "to", to)
	return nil
}
