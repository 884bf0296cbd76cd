/**
 * @description
 * This package provides the request correlation id used to trace a single
 * inbound signup request across every outbound call the service makes.
 * The id travels in the X-Request-ID header and is carried through the
 * request lifecycle on the context.
 *
 * @dependencies
 * - github.com/google/uuid: For generating fresh correlation ids.
 */
package correlation

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the correlation id on inbound and
// outbound requests.
const Header = "X-Request-ID"

type contextKey struct{}

// Ensure returns the existing correlation id if present, or a freshly
// generated one. The returned value is propagated verbatim for the rest of
// the request's call chain.
func Ensure(existing string) string {
	if existing != "" {
		return existing
	}
	return uuid.NewString()
}

// WithContext returns a copy of ctx carrying the correlation id.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id stored on ctx, or the empty string
// if none was set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
