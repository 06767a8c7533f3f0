package models

import (
	"time"

	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
)

// Status is the canonical verification state of a subject. Only the
// verification service writes it; every other component treats it as
// read-only.
type Status string

const (
	StatusNotStarted  Status = "not_started"
	StatusInProgress  Status = "in_progress"
	StatusUnderReview Status = "under_review"
	StatusVerified    Status = "verified"
	StatusRejected    Status = "rejected"
)

// legalTransitions is the full transition relation. rejected → in_progress
// is the only back-edge; verified is terminal.
var legalTransitions = map[Status][]Status{
	StatusNotStarted:  {StatusInProgress},
	StatusInProgress:  {StatusUnderReview},
	StatusUnderReview: {StatusVerified, StatusRejected},
	StatusRejected:    {StatusInProgress},
	StatusVerified:    {},
}

// Known reports whether s is a member of the closed status set.
func (s Status) Known() bool {
	_, ok := legalTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range legalTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Subject is the aggregate root for one user's verification.
//
// Invariants:
//   - Status is always a member of the closed status set
//   - Status changes only through the Can/Apply pairs below
//   - Version increments on every committed write (optimistic concurrency)
//   - CreatedAt is immutable after construction
type Subject struct {
	ID             id.SubjectID             `json:"id"`
	UserType       id.UserType              `json:"user_type"`
	Classification id.AccountClassification `json:"classification"`
	BusinessName   string                   `json:"business_name,omitempty"`
	PhoneNumber    string                   `json:"phone_number,omitempty"`
	PhoneConfirmed bool                     `json:"phone_confirmed"`
	Status         Status                   `json:"status"`
	Version        int64                    `json:"version"`
	SubmittedAt    *time.Time               `json:"submitted_at,omitempty"`
	DecidedAt      *time.Time               `json:"decided_at,omitempty"`
	DecidedBy      *id.ReviewerID           `json:"decided_by,omitempty"`
	DecisionNotes  string                   `json:"decision_notes,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// NewSubject creates a subject at not_started, the state every account holds
// immediately after registration.
func NewSubject(subjectID id.SubjectID, userType id.UserType, classification id.AccountClassification, businessName string, now time.Time) (*Subject, error) {
	if subjectID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "subject id is required")
	}
	if !userType.Known() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown user type: "+string(userType))
	}
	return &Subject{
		ID:             subjectID,
		UserType:       userType,
		Classification: classification,
		BusinessName:   businessName,
		Status:         StatusNotStarted,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanConfirmPhone checks the phone confirmation precondition. Confirming is
// idempotent, so an in_progress subject with a confirmed phone passes too.
func (s *Subject) CanConfirmPhone() error {
	if s.Status != StatusNotStarted && s.Status != StatusInProgress {
		return dErrors.New(dErrors.CodeInvalidState, "phone confirmation is only allowed before submission")
	}
	return nil
}

// ApplyPhoneConfirmed marks the phone confirmed and moves a fresh subject
// into in_progress. Calling it twice leaves the subject unchanged apart from
// UpdatedAt.
func (s *Subject) ApplyPhoneConfirmed(phoneNumber string, now time.Time) {
	s.PhoneConfirmed = true
	if phoneNumber != "" {
		s.PhoneNumber = phoneNumber
	}
	if s.Status == StatusNotStarted {
		s.Status = StatusInProgress
	}
	s.UpdatedAt = now
}

// CanStart checks whether the subject may move from not_started to
// in_progress (first document upload does this implicitly).
func (s *Subject) CanStart() error {
	if s.Status != StatusNotStarted && s.Status != StatusInProgress {
		return dErrors.New(dErrors.CodeInvalidState, "verification already submitted")
	}
	return nil
}

// ApplyStart moves a not_started subject into in_progress.
func (s *Subject) ApplyStart(now time.Time) {
	if s.Status == StatusNotStarted {
		s.Status = StatusInProgress
	}
	s.UpdatedAt = now
}

// CanSubmit checks the structural precondition for submission. The
// requirement gate (documents present, phone confirmed) is evaluated
// separately; this only guards the state edge.
func (s *Subject) CanSubmit() error {
	if !s.Status.CanTransitionTo(StatusUnderReview) {
		return dErrors.New(dErrors.CodeInvalidState, "submission requires an in-progress verification")
	}
	return nil
}

// ApplySubmission moves the subject under review.
func (s *Subject) ApplySubmission(now time.Time) {
	s.Status = StatusUnderReview
	s.SubmittedAt = &now
	s.UpdatedAt = now
}

// CanDecide checks that an approve or reject decision is currently legal.
func (s *Subject) CanDecide() error {
	if s.Status != StatusUnderReview {
		return dErrors.New(dErrors.CodeInvalidState, "decision requires a verification under review")
	}
	return nil
}

// ApplyApproval records a verified outcome.
func (s *Subject) ApplyApproval(reviewerID id.ReviewerID, notes string, now time.Time) {
	s.Status = StatusVerified
	s.DecidedAt = &now
	s.DecidedBy = &reviewerID
	s.DecisionNotes = notes
	s.UpdatedAt = now
}

// ApplyRejection records a rejected outcome. Callers must ensure notes are
// non-empty before applying.
func (s *Subject) ApplyRejection(reviewerID id.ReviewerID, notes string, now time.Time) {
	s.Status = StatusRejected
	s.DecidedAt = &now
	s.DecidedBy = &reviewerID
	s.DecisionNotes = notes
	s.UpdatedAt = now
}

// CanReset checks the resubmission precondition.
func (s *Subject) CanReset() error {
	if !s.Status.CanTransitionTo(StatusInProgress) || s.Status != StatusRejected {
		return dErrors.New(dErrors.CodeInvalidState, "resubmission requires a rejected verification")
	}
	return nil
}

// ApplyReset re-opens a rejected verification. The prior decision lives on in
// the resolved request history; the subject itself starts a clean attempt.
// PhoneConfirmed is deliberately untouched.
func (s *Subject) ApplyReset(now time.Time) {
	s.Status = StatusInProgress
	s.SubmittedAt = nil
	s.DecidedAt = nil
	s.DecidedBy = nil
	s.DecisionNotes = ""
	s.UpdatedAt = now
}
