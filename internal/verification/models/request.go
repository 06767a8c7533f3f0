package models

import (
	"time"

	id "agrilink/pkg/domain"
)

// Outcome is the resolution of a verification request.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Request is an immutable submission snapshot created when a subject moves
// under review. A subject accumulates one request per submission attempt;
// exactly one may be pending at a time. Once closed, a request is never
// mutated again, which is what lets rejection history survive resets.
type Request struct {
	ID             id.RequestID             `json:"id"`
	SubjectID      id.SubjectID             `json:"subject_id"`
	UserType       id.UserType              `json:"user_type"`
	Classification id.AccountClassification `json:"classification"`
	BusinessName   string                   `json:"business_name,omitempty"`
	PhoneConfirmed bool                     `json:"phone_confirmed"`
	Documents      []Document               `json:"documents"`
	SubmittedAt    time.Time                `json:"submitted_at"`

	Outcome   Outcome        `json:"outcome"`
	DecidedAt *time.Time     `json:"decided_at,omitempty"`
	DecidedBy *id.ReviewerID `json:"decided_by,omitempty"`
	Notes     string         `json:"notes,omitempty"`
}

// NewRequest snapshots a subject and its document set at submission time.
func NewRequest(requestID id.RequestID, subject *Subject, documents []Document, now time.Time) *Request {
	docs := make([]Document, len(documents))
	copy(docs, documents)
	return &Request{
		ID:             requestID,
		SubjectID:      subject.ID,
		UserType:       subject.UserType,
		Classification: subject.Classification,
		BusinessName:   subject.BusinessName,
		PhoneConfirmed: subject.PhoneConfirmed,
		Documents:      docs,
		SubmittedAt:    now,
		Outcome:        OutcomePending,
	}
}

// Resolved reports whether the request has been closed with an outcome.
func (r *Request) Resolved() bool {
	return r.Outcome != OutcomePending
}

// RejectionRecord is the caller-facing view of the most recent rejected
// request. It survives resubmission so the prior feedback stays visible
// while the subject retries.
type RejectionRecord struct {
	RequestID id.RequestID   `json:"request_id"`
	Notes     string         `json:"notes"`
	DecidedAt time.Time      `json:"decided_at"`
	DecidedBy *id.ReviewerID `json:"decided_by,omitempty"`
}

// RejectionFromRequest derives the rejection view from a resolved request.
// Returns nil when the request was not rejected.
func RejectionFromRequest(r *Request) *RejectionRecord {
	if r == nil || r.Outcome != OutcomeRejected || r.DecidedAt == nil {
		return nil
	}
	return &RejectionRecord{
		RequestID: r.ID,
		Notes:     r.Notes,
		DecidedAt: *r.DecidedAt,
		DecidedBy: r.DecidedBy,
	}
}
