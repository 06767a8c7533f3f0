// Package request assigns a correlation ID to each HTTP request so logs and
// audit entries can be tied back to a single call.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"agrilink/pkg/requestcontext"
)

const headerRequestID = "X-Request-Id"

// Middleware reuses an incoming X-Request-Id or mints a new one, storing it
// in the context and echoing it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
