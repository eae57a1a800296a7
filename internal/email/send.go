package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const sendTimeout = 10 * time.Second

func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	// Detach cancellation so handler-scoped contexts don't abort async sends.
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}

// SendAsync delivers msg in the background and returns immediately. The
// returned channel is closed once the attempt finishes; callers may ignore it.
func SendAsync(ctx context.Context, sender EmailSender, recipient string, msg Message, logger *zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	recipient = strings.TrimSpace(recipient)
	if sender == nil || recipient == "" || msg.Subject == "" {
		close(done)
		return done
	}

	sendCtx, cancel := newEmailContext(ctx, sendTimeout)
	go func() {
		defer close(done)
		defer cancel()
		if err := sender.Send(sendCtx, recipient, msg); err != nil {
			if logger != nil {
				logger.Error().Err(err).Str("subject", msg.Subject).Msg("Failed to send email")
			}
			return
		}
		if logger != nil {
			logger.Debug().Str("subject", msg.Subject).Msg("Email sent")
		}
	}()
	return done
}
