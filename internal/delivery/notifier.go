package delivery

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deliverer.go -package=mocks xyian-bot/internal/delivery Deliverer

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Deliverer is the narrow interface the notifier needs from a webhook
// client.
type Deliverer interface {
	// Send posts one rendered message to the destination.
	Send(ctx context.Context, msg Message) error
}

// Notifier posts operational notifications through a webhook, retrying
// transient failures with backoff. Failures are logged, never propagated:
// notification is fire-and-forget from the core's point of view.
type Notifier struct {
	deliverer Deliverer
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
}

// NewNotifier creates a notifier with three attempts and a doubling delay.
func NewNotifier(deliverer Deliverer) *Notifier {
	return &Notifier{
		deliverer: deliverer,
		attempts:  3,
		baseDelay: time.Second,
		logger:    slog.Default(),
	}
}

// Notify sends msg, retrying rate-limited attempts with doubling backoff.
// It returns true when the message was delivered.
func (n *Notifier) Notify(ctx context.Context, msg Message) bool {
	delay := n.baseDelay
	for attempt := 1; attempt <= n.attempts; attempt++ {
		err := n.deliverer.Send(ctx, msg)
		if err == nil {
			return true
		}

		if !errors.Is(err, ErrRateLimited) || attempt == n.attempts {
			n.logger.WarnContext(ctx, "notification delivery failed", "attempt", attempt, "error", err)
			return false
		}

		n.logger.DebugContext(ctx, "notification rate limited, backing off", "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay *= 2
	}
	return false
}
