package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
)

func newTestSubject(t *testing.T) *Subject {
	t.Helper()
	s, err := NewSubject(id.SubjectID(uuid.New()), id.UserTypeProducer, id.ClassificationIndividual, "", time.Now())
	require.NoError(t, err)
	return s
}

func TestNewSubjectStartsNotStarted(t *testing.T) {
	s := newTestSubject(t)
	assert.Equal(t, StatusNotStarted, s.Status)
	assert.Equal(t, int64(1), s.Version)
	assert.False(t, s.PhoneConfirmed)
}

func TestNewSubjectRejectsNilID(t *testing.T) {
	_, err := NewSubject(id.SubjectID{}, id.UserTypeProducer, id.ClassificationIndividual, "", time.Now())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestStatusSetIsClosed(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusUnderReview, StatusVerified, StatusRejected} {
		assert.True(t, s.Known(), string(s))
	}
	assert.False(t, Status("pending").Known())
	assert.False(t, Status("").Known())
}

func TestTransitionRelation(t *testing.T) {
	tests := []struct {
		from, to Status
		legal    bool
	}{
		{StatusNotStarted, StatusInProgress, true},
		{StatusInProgress, StatusUnderReview, true},
		{StatusUnderReview, StatusVerified, true},
		{StatusUnderReview, StatusRejected, true},
		{StatusRejected, StatusInProgress, true},

		// No forward skips, no exits from verified.
		{StatusNotStarted, StatusUnderReview, false},
		{StatusNotStarted, StatusVerified, false},
		{StatusInProgress, StatusVerified, false},
		{StatusInProgress, StatusRejected, false},
		{StatusVerified, StatusInProgress, false},
		{StatusVerified, StatusRejected, false},
		{StatusRejected, StatusUnderReview, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.legal, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestPhoneConfirmationIdempotent(t *testing.T) {
	s := newTestSubject(t)
	now := time.Now()

	require.NoError(t, s.CanConfirmPhone())
	s.ApplyPhoneConfirmed("+959123456789", now)
	assert.Equal(t, StatusInProgress, s.Status)
	assert.True(t, s.PhoneConfirmed)

	// Second confirmation changes nothing.
	require.NoError(t, s.CanConfirmPhone())
	s.ApplyPhoneConfirmed("+959123456789", now)
	assert.Equal(t, StatusInProgress, s.Status)
	assert.True(t, s.PhoneConfirmed)
}

func TestPhoneConfirmationBlockedUnderReview(t *testing.T) {
	s := newTestSubject(t)
	s.ApplyStart(time.Now())
	s.ApplySubmission(time.Now())

	err := s.CanConfirmPhone()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestDecisionRequiresUnderReview(t *testing.T) {
	s := newTestSubject(t)
	err := s.CanDecide()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))

	s.ApplyStart(time.Now())
	err = s.CanDecide()
	require.Error(t, err)

	s.ApplySubmission(time.Now())
	require.NoError(t, s.CanDecide())
}

func TestRejectThenReset(t *testing.T) {
	s := newTestSubject(t)
	now := time.Now()
	reviewer := id.ReviewerID(uuid.New())

	s.ApplyPhoneConfirmed("+959123456789", now)
	s.ApplySubmission(now)
	s.ApplyRejection(reviewer, "blurry ID", now)

	assert.Equal(t, StatusRejected, s.Status)
	assert.Equal(t, "blurry ID", s.DecisionNotes)

	require.NoError(t, s.CanReset())
	s.ApplyReset(now)

	assert.Equal(t, StatusInProgress, s.Status)
	assert.Nil(t, s.SubmittedAt)
	assert.Nil(t, s.DecidedAt)
	assert.Empty(t, s.DecisionNotes)
	// Resubmission never forces re-confirming the phone.
	assert.True(t, s.PhoneConfirmed)
}

func TestVerifiedIsTerminal(t *testing.T) {
	s := newTestSubject(t)
	now := time.Now()
	s.ApplyPhoneConfirmed("+959123456789", now)
	s.ApplySubmission(now)
	s.ApplyApproval(id.ReviewerID(uuid.New()), "", now)

	assert.Equal(t, StatusVerified, s.Status)
	assert.Error(t, s.CanReset())
	assert.Error(t, s.CanSubmit())
	assert.Error(t, s.CanConfirmPhone())
	assert.Error(t, s.CanDecide())
}
