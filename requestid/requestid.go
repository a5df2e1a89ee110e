package requestid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ctxKey is the context key under which the current request ID is stored.
type ctxKey struct{}

// New generates a trace identifier for a single outbound request.
// The format is "req_<unix-milliseconds>_<random-suffix>": sortable by
// creation time, unique enough for log correlation across client and server.
func New() string {
	return fmt.Sprintf("req_%d_%s", time.Now().UnixMilli(), randomSuffix())
}

// randomSuffix returns 9 random lowercase hex characters.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

// WithContext returns a context carrying the given request ID.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext extracts the request ID from the context.
// Returns an empty string if none is set.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
