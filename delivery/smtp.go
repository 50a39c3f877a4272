package delivery

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
)

// SMTPTransport builds MIME messages with enmime and submits them to an
// SMTP relay.
type SMTPTransport struct {
	sender    enmime.Sender
	fromEmail string
	fromName  string
	domain    string
}

// NewSMTPTransport relays through host:port, authenticating with PLAIN
// auth when username is set.
func NewSMTPTransport(host string, port int, username, password, fromEmail, fromName string) *SMTPTransport {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	return NewSMTPTransportWithSender(enmime.NewSMTP(addr, auth), fromEmail, fromName)
}

// NewSMTPTransportWithSender uses an arbitrary enmime.Sender.
func NewSMTPTransportWithSender(sender enmime.Sender, fromEmail, fromName string) *SMTPTransport {
	return &SMTPTransport{
		sender:    sender,
		fromEmail: fromEmail,
		fromName:  fromName,
		domain:    domainOf(fromEmail),
	}
}

func (t *SMTPTransport) Type() string { return TransportSMTP }

// Send submits msg. net/smtp has no context support, so a send still in
// flight when ctx ends is abandoned and reported as ctx.Err().
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	builder := enmime.Builder().
		From(t.fromName, t.fromEmail).
		To("", msg.To).
		Subject(msg.Subject).
		Header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), t.domain)).
		Text([]byte(msg.Text)).
		HTML([]byte(msg.HTML))

	done := make(chan error, 1)
	go func() {
		done <- builder.Send(t.sender)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s failed: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s abandoned: %w", msg.To, ctx.Err())
	}
}

func domainOf(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 && i < len(email)-1 {
		return email[i+1:]
	}
	return "localhost"
}
