package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUpstreamUnavailable, "sms gateway unreachable")

	require.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(err, CodeUpstreamUnavailable))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := New(CodeStaleState, "version changed")
	outer := fmt.Errorf("submit failed: %w", inner)

	assert.True(t, HasCode(outer, CodeStaleState))
	assert.False(t, HasCode(outer, CodeNotFound))
}

func TestCodeOfUntagged(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeGateNotSatisfied, CodeOf(New(CodeGateNotSatisfied, "missing steps")))
}

func TestDetailsSurvive(t *testing.T) {
	err := NewWithDetails(CodeGateNotSatisfied, "requirements not met", []string{"phone_confirmation", "identity_proof"})
	assert.Equal(t, []string{"phone_confirmation", "identity_proof"}, DetailsOf(err))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeMissingReviewNotes, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeInvalidState, http.StatusConflict},
		{CodeStaleState, http.StatusConflict},
		{CodeGateNotSatisfied, http.StatusUnprocessableEntity},
		{CodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{CodeUnsupportedMedia, http.StatusUnsupportedMediaType},
		{CodeUpstreamUnavailable, http.StatusBadGateway},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.code), string(tt.code))
	}
}
