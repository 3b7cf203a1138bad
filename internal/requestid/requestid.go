// Package requestid carries a per-request correlation id through a context.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to propagate the id upstream and back to callers.
const Header = "X-Request-Id"

type contextKey string

const requestIDKey contextKey = "request-id"

// New returns a fresh random id.
func New() string {
	return uuid.NewString()
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// FromContext returns the id stored in ctx, or "" when none is set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Ensure returns ctx unchanged when it already carries an id, otherwise a copy
// carrying a new one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithRequestID(ctx, id), id
}
