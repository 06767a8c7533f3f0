// Package audit records key verification lifecycle actions for compliance
// review. Events are emitted from domain logic, buffered in memory, and
// persisted by a background worker so audit writes never sit on the request
// path.
package audit

import (
	"context"
	"time"

	id "agrilink/pkg/domain"
)

// Event captures one verification action. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	SubjectID id.SubjectID
	// ActorID tracks who performed the action when different from the
	// subject. Used for admin decisions made on a subject's behalf.
	ActorID   string
	Action    Action
	Decision  string
	Reason    string
	RequestID string
}

// Action names the recorded lifecycle step.
type Action string

const (
	ActionPhoneConfirmed       Action = "phone_confirmed"
	ActionDocumentUploaded     Action = "document_uploaded"
	ActionDocumentRemoved      Action = "document_removed"
	ActionVerificationSubmit   Action = "verification_submitted"
	ActionVerificationApproved Action = "verification_approved"
	ActionVerificationRejected Action = "verification_rejected"
	ActionVerificationReset    Action = "verification_reset"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]Event, error)
}
