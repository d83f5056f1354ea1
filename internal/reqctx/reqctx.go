// Package reqctx carries per-request identifiers through context.Context.
package reqctx

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestIDKey struct{}
	clientIDKey  struct{}
)

// NewID generates a random UUID v4, used for both request and client ids.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id minted by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns "" if ctx carries no request id.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientID returns "" if ctx carries no browser client id.
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
