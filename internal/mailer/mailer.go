package mailer

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Confirmation is the data rendered into a ticket confirmation email.
type Confirmation struct {
	RegistrationID uuid.UUID
	EventName      string
	Email          string
	Name           string
	TicketCode     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	cfg  Config
	log  *zerolog.Logger
	send sendFunc
}

func NewSMTPNotifier(cfg Config, logger *zerolog.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: logger, send: smtp.SendMail}
}

func (n *SMTPNotifier) SendConfirmation(ctx context.Context, c Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	greeting := "Hello"
	if c.Name != "" {
		greeting = "Hello " + c.Name
	}
	subject := fmt.Sprintf("Your ticket for %s", c.EventName)
	body := fmt.Sprintf("%s,\n\nYour registration for %q is confirmed.\nTicket code: %s\n\nShow this code at the entrance.",
		greeting, c.EventName, c.TicketCode)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.cfg.From, c.Email, sanitizeHeader(subject), body,
	)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	if err := n.send(addr, auth, n.cfg.From, []string{c.Email}, []byte(msg)); err != nil {
		n.log.Warn().Err(err).Str("registration_id", c.RegistrationID.String()).Msg("failed to send confirmation email")
		return fmt.Errorf("send email: %w", err)
	}

	n.log.Info().Str("registration_id", c.RegistrationID.String()).Msg("confirmation email sent")
	return nil
}

func sanitizeHeader(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
