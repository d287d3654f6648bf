// Package mailer sends verification and password-reset emails over SMTP.
// When SMTP credentials are not configured it logs the action link instead,
// which keeps local development working without a mail account.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	charm "github.com/charmbracelet/log"

	"github.com/openmun/delegation-api/internal/config"
	"github.com/openmun/delegation-api/internal/logger"
	"github.com/openmun/delegation-api/internal/metrics"
)

// Mailer sends delegate-facing email
type Mailer struct {
	cfg *config.Config
	log *charm.Logger
}

// New creates a mailer from the application configuration
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		cfg: cfg,
		log: logger.Mailer(),
	}
}

type emailData struct {
	Name       string
	ActionLink string
	FromName   string
}

var verificationTemplate = template.Must(template.New("verification").Parse(`
<html>
  <body>
    <p>Hello {{.Name}},</p>
    <p>Thanks for registering. Please confirm your email address to claim
    your delegation seat:</p>
    <p><a href="{{.ActionLink}}">Verify my email</a></p>
    <p>If you did not sign up, you can ignore this message.</p>
    <p>{{.FromName}}</p>
  </body>
</html>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<html>
  <body>
    <p>Hello {{.Name}},</p>
    <p>We received a request to reset your password:</p>
    <p><a href="{{.ActionLink}}">Reset my password</a></p>
    <p>If you did not request this, you can ignore this message.</p>
    <p>{{.FromName}}</p>
  </body>
</html>
`))

// SendVerification emails an email-verification link
func (m *Mailer) SendVerification(ctx context.Context, email, name, token string) error {
	link := fmt.Sprintf("%s/verify/%s", m.cfg.SMTP.BaseURL, token)
	return m.send(ctx, "verification", email, "Verify your email address", verificationTemplate, emailData{
		Name:       name,
		ActionLink: link,
		FromName:   m.cfg.SMTP.FromName,
	})
}

// SendPasswordReset emails a password-reset link
func (m *Mailer) SendPasswordReset(ctx context.Context, email, name, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", m.cfg.SMTP.BaseURL, token)
	return m.send(ctx, "reset", email, "Reset your password", resetTemplate, emailData{
		Name:       name,
		ActionLink: link,
		FromName:   m.cfg.SMTP.FromName,
	})
}

func (m *Mailer) send(_ context.Context, kind, to, subject string, tmpl *template.Template, data emailData) error {
	if m.cfg.SMTP.Username == "" || m.cfg.SMTP.Password == "" {
		// SMTP not configured; surface the link in the log so the flow
		// stays testable end to end.
		m.log.Warn("SMTP not configured, logging action link instead",
			"kind", kind, "to", to, "link", data.ActionLink)
		metrics.EmailsSentTotal.WithLabelValues(kind, "skipped").Inc()
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		metrics.EmailsSentTotal.WithLabelValues(kind, "failed").Inc()
		return fmt.Errorf("failed to render email template: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.SMTP.FromName, m.cfg.SMTP.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	addr := m.cfg.SMTP.Host + ":" + m.cfg.SMTP.Port
	authn := smtp.PlainAuth("", m.cfg.SMTP.Username, m.cfg.SMTP.Password, m.cfg.SMTP.Host)

	if err := smtp.SendMail(addr, authn, m.cfg.SMTP.FromEmail, []string{to}, msg.Bytes()); err != nil {
		m.log.Error("failed to send email", "kind", kind, "to", to, "error", err)
		metrics.EmailsSentTotal.WithLabelValues(kind, "failed").Inc()
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	m.log.Info("email sent", "kind", kind, "to", to)
	metrics.EmailsSentTotal.WithLabelValues(kind, "sent").Inc()
	return nil
}
