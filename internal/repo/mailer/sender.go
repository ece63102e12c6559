package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/aitwy/aitwy-server/internal/config"
)

// Message is a rendered email ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type smtpEndpoint struct {
	host string
	port int
}

// well-known providers addressable by EMAIL_SERVICE
var serviceEndpoints = map[string]smtpEndpoint{
	"gmail":    {"smtp.gmail.com", 587},
	"outlook":  {"smtp-mail.outlook.com", 587},
	"hotmail":  {"smtp-mail.outlook.com", 587},
	"yahoo":    {"smtp.mail.yahoo.com", 587},
	"sendgrid": {"smtp.sendgrid.net", 587},
	"mailgun":  {"smtp.mailgun.org", 587},
	"ethereal": {"smtp.ethereal.email", 587},
}

func resolveEndpoint(cfg config.EmailConfig) (smtpEndpoint, error) {
	ep, ok := serviceEndpoints[strings.ToLower(strings.TrimSpace(cfg.Service))]
	if cfg.Host != "" {
		ep.host = cfg.Host
		if ep.port == 0 {
			ep.port = 587
		}
		ok = true
	}
	if cfg.Port > 0 {
		ep.port = cfg.Port
	}
	if !ok {
		return smtpEndpoint{}, fmt.Errorf("unknown email service %q, set EMAIL_HOST", cfg.Service)
	}
	return ep, nil
}

type smtpSender struct {
	client *mail.Client
}

func NewSMTPSender(cfg config.EmailConfig) (Sender, error) {
	ep, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}
	client, err := mail.NewClient(ep.host,
		mail.WithPort(ep.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.User),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &smtpSender{client: client}, nil
}

func (s *smtpSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// logSender writes messages to the log instead of delivering them. It is used
// when no SMTP credentials are configured.
type logSender struct {
	log *zap.SugaredLogger
}

func NewLogSender(log *zap.SugaredLogger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.log.Infow("email not delivered, no SMTP credentials configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Text,
	)
	return nil
}
