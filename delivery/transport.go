// Package delivery composes reminder emails and hands them to a mail
// transport (SMTP or the SendGrid HTTP API).
package delivery

import (
	"context"
	"fmt"
	"strings"
)

// Transport kinds selectable through configuration.
const (
	TransportSMTP     = "smtp"
	TransportSendGrid = "sendgrid"
)

// Message is one outbound email with an HTML body and a plain-text
// alternative.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// MailTransport is the adapter interface for outbound mail.
// Implement this to add new transports.
type MailTransport interface {
	// Type returns the transport kind (e.g. "smtp").
	Type() string
	// Send delivers msg, giving up when ctx is done.
	Send(ctx context.Context, msg Message) error
}

// Select returns the transport registered for kind.
func Select(kind string, transports ...MailTransport) (MailTransport, error) {
	byType := make(map[string]MailTransport, len(transports))
	for _, t := range transports {
		byType[t.Type()] = t
	}
	t, ok := byType[strings.ToLower(kind)]
	if !ok {
		return nil, fmt.Errorf("no mail transport registered for type %q", kind)
	}
	return t, nil
}
