// Package notify delivers confirmation codes out-of-band.
//
// Delivery is fire-and-forget from the caller's perspective: the auth
// service logs a failed send and still returns success to the client, so a
// flaky mail relay cannot block signup. (The code can always be re-obtained
// by signing up again — signup is idempotent.)
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Sender delivers a message body to a recipient address.
type Sender interface {
	Send(recipient, subject, body string) error
}

// SMTPSender sends plain-text mail through a relay. No auth is attempted —
// the expected deployment is a local or trusted relay.
type SMTPSender struct {
	Addr string // host:port of the relay
	From string
}

// NewSMTPSender creates an SMTPSender for the given relay address.
func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{
		Addr: fmt.Sprintf("%s:%d", host, port),
		From: from,
	}
}

// Send delivers one message.
func (s *SMTPSender) Send(recipient, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, recipient, subject, body)
	if err := smtp.SendMail(s.Addr, nil, s.From, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("notify: sending mail to %s: %w", recipient, err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used in
// development, where the confirmation code must be visible somewhere.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs the message.
func (s *LogSender) Send(recipient, subject, body string) error {
	s.Logger.Info("mail delivery (log sender)",
		slog.String("to", recipient),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
