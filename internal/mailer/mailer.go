package mailer

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/murdoch-its/complaints-api/pkg/config"
)

// TicketConfirmation carries everything the submission email template needs.
type TicketConfirmation struct {
	FirstName     string
	Email         string
	TicketID      string
	Title         string
	Category      string
	Content       string
	SeverityLevel string
	Suggestion    string
}

// LoginCode carries the OTP delivery payload.
type LoginCode struct {
	Email string
	Code  string
}

// Notifier delivers the portal's two outbound messages. Implementations are
// best-effort: callers log failures and never surface them to HTTP clients.
type Notifier interface {
	SendTicketConfirmation(ctx context.Context, msg TicketConfirmation) error
	SendLoginCode(ctx context.Context, msg LoginCode) error
}

// SMTPMailer sends mail synchronously over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendTicketConfirmation delivers the submission confirmation email.
func (m *SMTPMailer) SendTicketConfirmation(ctx context.Context, msg TicketConfirmation) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.Email)
	mail.SetHeader("Subject", "[Murdoch] Complaint Ticket Confirmation")
	mail.SetBody("text/html", ticketConfirmationBody(msg))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("send ticket confirmation: %w", err)
	}
	return nil
}

// SendLoginCode delivers the OTP verification email.
func (m *SMTPMailer) SendLoginCode(ctx context.Context, msg LoginCode) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.Email)
	mail.SetHeader("Subject", "[Murdoch] OTP Verification Code")
	mail.SetBody("text/html", loginCodeBody(msg))

	if err := m.send(ctx, mail); err != nil {
		return fmt.Errorf("send login code: %w", err)
	}
	return nil
}

// send delivers the message while honoring the context deadline. gomail has no
// context support, so a timed-out delivery is abandoned to finish or fail in
// the background.
func (m *SMTPMailer) send(ctx context.Context, mail *gomail.Message) error {
	return sendWithContext(ctx, func() error {
		return m.dialer.DialAndSend(mail)
	})
}

func sendWithContext(ctx context.Context, send func() error) error {
	done := make(chan error, 1)
	go func() { done <- send() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
