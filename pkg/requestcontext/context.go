// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets values; services read them. Keeping
// this package free of net/http lets services import only what they need.
package requestcontext

import (
	"context"
	"time"

	id "agrilink/pkg/domain"
)

type (
	subjectIDKey   struct{}
	reviewerIDKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeySubjectID   = subjectIDKey{}
	ContextKeyReviewerID  = reviewerIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// SubjectID retrieves the authenticated subject ID from the context.
func SubjectID(ctx context.Context) id.SubjectID {
	if v, ok := ctx.Value(ContextKeySubjectID).(id.SubjectID); ok {
		return v
	}
	return id.SubjectID{}
}

// WithSubjectID injects a subject ID into the context.
func WithSubjectID(ctx context.Context, subjectID id.SubjectID) context.Context {
	return context.WithValue(ctx, ContextKeySubjectID, subjectID)
}

// ReviewerID retrieves the acting reviewer ID from the context.
func ReviewerID(ctx context.Context) id.ReviewerID {
	if v, ok := ctx.Value(ContextKeyReviewerID).(id.ReviewerID); ok {
		return v
	}
	return id.ReviewerID{}
}

// WithReviewerID injects a reviewer ID into the context.
func WithReviewerID(ctx context.Context, reviewerID id.ReviewerID) context.Context {
	return context.WithValue(ctx, ContextKeyReviewerID, reviewerID)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time, falling back to the wall clock when
// no middleware pinned one. All writes within a request share one timestamp.
func Now(ctx context.Context) time.Time {
	if v, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return v
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Tests use this to freeze
// the clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
