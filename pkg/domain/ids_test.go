package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agrilink/pkg/domain-errors"
)

func TestParseSubjectID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseSubjectID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseSubjectID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSubjectID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseSubjectID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, SubjectID(valid), id)
	})
}

func TestParseID_RejectsAttackVectors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"SQL injection attempt", "'; DROP TABLE subjects;--"},
		{"Path traversal", "../../../etc/passwd"},
		{"Oversized input", strings.Repeat("a", 1000)},
		{"Whitespace only", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReviewerID(tt.input)
			require.Error(t, err)
		})
	}
}

func TestIDsMarshalAsUUIDStrings(t *testing.T) {
	subjectID := NewSubjectID()
	reviewerID := ReviewerID(uuid.New())
	requestID := NewRequestID()

	payload, err := json.Marshal(struct {
		Subject  SubjectID  `json:"subject"`
		Reviewer ReviewerID `json:"reviewer"`
		Request  RequestID  `json:"request"`
	}{subjectID, reviewerID, requestID})
	require.NoError(t, err)

	// Caller-facing payloads carry the canonical string form, never the
	// underlying byte array.
	var decoded struct {
		Subject  string `json:"subject"`
		Reviewer string `json:"reviewer"`
		Request  string `json:"request"`
	}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, subjectID.String(), decoded.Subject)
	assert.Equal(t, reviewerID.String(), decoded.Reviewer)
	assert.Equal(t, requestID.String(), decoded.Request)

	var roundTrip struct {
		Subject  SubjectID  `json:"subject"`
		Reviewer ReviewerID `json:"reviewer"`
		Request  RequestID  `json:"request"`
	}
	require.NoError(t, json.Unmarshal(payload, &roundTrip))
	assert.Equal(t, subjectID, roundTrip.Subject)
	assert.Equal(t, reviewerID, roundTrip.Reviewer)
	assert.Equal(t, requestID, roundTrip.Request)
}

func TestTypeDistinction(t *testing.T) {
	subjectID := SubjectID(uuid.New())
	reviewerID := ReviewerID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ SubjectID = reviewerID // compile error
	assert.NotEqual(t, uuid.UUID(subjectID), uuid.UUID(reviewerID))
}
