// Package auth validates bearer tokens on self-service routes and places the
// authenticated subject ID in the request context.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	id "agrilink/pkg/domain"
	"agrilink/pkg/requestcontext"
)

// Validator verifies HMAC-signed tokens whose subject claim is the subject ID.
type Validator struct {
	signingKey []byte
}

func NewValidator(signingKey string) *Validator {
	return &Validator{signingKey: []byte(signingKey)}
}

// SubjectFromToken parses and validates a token, returning the subject ID.
func (v *Validator) SubjectFromToken(tokenString string) (id.SubjectID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return id.SubjectID{}, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return id.SubjectID{}, err
	}
	return id.ParseSubjectID(sub)
}

// Sign issues a token for a subject. Used by tests and the dev registration
// endpoint; production tokens come from the account service.
func (v *Validator) Sign(subjectID id.SubjectID) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subjectID.String(),
	})
	return token.SignedString(v.signingKey)
}

// RequireSubject rejects requests without a valid bearer token and stores the
// subject ID in the context for handlers.
func RequireSubject(validator *Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			subjectID, err := validator.SubjectFromToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSubjectID(ctx, subjectID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
