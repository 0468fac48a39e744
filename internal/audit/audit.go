package audit

import (
	"context"
	"strings"
	"time"
)

// Entry is an immutable record of a permitted mutating action. Entries are
// append-only: nothing in the system updates or deletes them.
type Entry struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Appender persists audit entries.
type Appender interface {
	AppendAudit(ctx context.Context, entry *Entry) error
}

// Store adds the read side used by the admin-only audit listing.
type Store interface {
	Appender
	ListAudit(ctx context.Context, limit, offset int) ([]Entry, error)
}

type ctxKey string

const requestIDKey ctxKey = "audit_request_id"

// WithRequestID attaches the request identifier to the context so failed
// audit writes can be correlated with the originating request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the audit request id from context if present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
