package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "agrilink/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("gate failure includes details", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewWithDetails(dErrors.CodeGateNotSatisfied,
			"verification requirements are not complete", []string{"business_license"}))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var body struct {
			Error            string   `json:"error"`
			ErrorDescription string   `json:"error_description"`
			Details          []string `json:"details"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Error != "gate_not_satisfied" {
			t.Fatalf("expected error code gate_not_satisfied, got %q", body.Error)
		}
		if len(body.Details) != 1 || body.Details[0] != "business_license" {
			t.Fatalf("expected missing step in details, got %v", body.Details)
		}
	})

	t.Run("stale state maps to conflict", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeStaleState, "retry"))
		if w.Code != http.StatusConflict {
			t.Fatalf("expected status %d, got %d", http.StatusConflict, w.Code)
		}
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	type payload struct {
		Phone string `json:"phone" valid:"required"`
	}

	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"phone":"+959799123456"}`))
		req, ok := DecodeAndPrepare[payload](w, r, nil)
		if !ok {
			t.Fatalf("expected decode to succeed, got %s", w.Body.String())
		}
		if req.Phone != "+959799123456" {
			t.Fatalf("unexpected phone %q", req.Phone)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		if _, ok := DecodeAndPrepare[payload](w, r, nil); ok {
			t.Fatal("expected decode to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("missing required field", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		if _, ok := DecodeAndPrepare[payload](w, r, nil); ok {
			t.Fatal("expected validation to fail")
		}
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}
