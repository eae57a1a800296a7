package email

import "context"

// Message is a rendered email with a plain text body and an optional HTML part.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// EmailSender provides a testable abstraction over SES delivery.
type EmailSender interface {
	Send(ctx context.Context, recipient string, msg Message) error
}
