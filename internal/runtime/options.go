package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/leadchat/pkg/domain"
)

// DefaultDeliveryTimeout bounds a single lead delivery attempt.
const DefaultDeliveryTimeout = 15 * time.Second

// submitGrace is added to the delivery timeout before a persisted
// submission with no result is considered lost.
const submitGrace = 5 * time.Second

// DefaultFailureMessage is shown inline when the relay did not acknowledge a lead.
const DefaultFailureMessage = "Sorry, I couldn't send your details. Please try again or contact me directly."

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator overrides the generator used for entry IDs and submission tokens.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// WithDeliveryTimeout bounds each delivery. Zero or negative keeps the default.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithSessionID sets the session ID stamped on snapshots, events and leads.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithContactFallback appends a direct contact (e.g. an email address) to the
// delivery failure message.
func WithContactFallback(contact string) Option {
	return func(e *Engine) {
		if contact != "" {
			e.failureMessage = "Sorry, I couldn't send your details. Please try again or contact me directly at " + contact + "."
		}
	}
}
