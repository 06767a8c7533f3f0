// Package domain holds typed identifiers and shared enumerations. Typed UUIDs
// prevent cross-type assignment at compile time; parsing enforces the
// invariant that IDs are valid, non-empty, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "agrilink/pkg/domain-errors"
)

type (
	// SubjectID identifies the user whose verification is being tracked.
	SubjectID uuid.UUID
	// ReviewerID identifies the admin acting on a verification request.
	ReviewerID uuid.UUID
	// RequestID identifies a verification request snapshot.
	RequestID uuid.UUID
)

func (id SubjectID) String() string  { return uuid.UUID(id).String() }
func (id ReviewerID) String() string { return uuid.UUID(id).String() }
func (id RequestID) String() string  { return uuid.UUID(id).String() }

func (id SubjectID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ReviewerID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// The defined types shadow uuid.UUID's text marshaling, so without these
// delegations encoding/json renders IDs as raw byte arrays.

func (id SubjectID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id ReviewerID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id RequestID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }

func (id *SubjectID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

func (id *ReviewerID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

func (id *RequestID) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(data)
}

// NewSubjectID returns a fresh random subject ID.
func NewSubjectID() SubjectID { return SubjectID(uuid.New()) }

// NewRequestID returns a fresh random request ID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// ParseSubjectID parses and validates a subject ID string.
func ParseSubjectID(s string) (SubjectID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return SubjectID{}, err
	}
	return SubjectID(u), nil
}

// ParseReviewerID parses and validates a reviewer ID string.
func ParseReviewerID(s string) (ReviewerID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return ReviewerID{}, err
	}
	return ReviewerID(u), nil
}

// ParseRequestID parses and validates a request ID string.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RequestID{}, err
	}
	return RequestID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
