// Package transport wires the HTTP surface: self-service verification
// routes behind bearer auth, admin review routes behind the admin token,
// and the operational endpoints.
package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrilink/internal/options"
	"agrilink/internal/platform/metrics"
	"agrilink/internal/review"
	verification "agrilink/internal/verification/service"
	"agrilink/pkg/platform/middleware/admin"
	"agrilink/pkg/platform/middleware/auth"
	"agrilink/pkg/platform/middleware/request"
	"agrilink/pkg/platform/middleware/requesttime"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Verification *verification.Service
	Review       *review.Service
	Options      *options.Service
	Validator    *auth.Validator
	AdminToken   string
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	// DevRoutes exposes the subject registration endpoint used before the
	// account system calls in. Never enabled in production.
	DevRoutes bool
}

// NewRouter mounts all endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	vh := NewVerificationHandler(cfg.Verification, logger).WithMetrics(cfg.Metrics)
	ah := NewAdminHandler(cfg.Review, logger).WithDocumentOpener(cfg.Verification)
	oh := NewOptionsHandler(cfg.Options)

	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)
	if cfg.Metrics != nil {
		r.Use(requestCounter(cfg.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/verification", func(r chi.Router) {
		if cfg.DevRoutes {
			r.Post("/subjects", vh.HandleCreateSubject)
		}
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSubject(cfg.Validator, logger))
			r.Get("/status", vh.HandleGetStatus)
			r.Get("/rejection", vh.HandleRejectionHistory)
			r.Post("/phone/send", vh.HandleSendPhoneCode)
			r.Post("/phone/confirm", vh.HandleConfirmPhone)
			r.Put("/documents/{kind}", vh.HandleUploadDocument)
			r.Delete("/documents/{kind}", vh.HandleRemoveDocument)
			r.Post("/submit", vh.HandleSubmit)
			r.Post("/resubmit", vh.HandleResubmit)
		})
	})

	r.Route("/admin/verifications", func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
		r.Get("/pending", ah.HandleListPending)
		r.Get("/resolved", ah.HandleListResolved)
		r.Get("/{subjectID}", ah.HandleCase)
		r.Get("/{subjectID}/documents/{kind}", ah.HandleOpenDocument)
		r.Post("/{subjectID}/approve", ah.HandleApprove)
		r.Post("/{subjectID}/reject", ah.HandleReject)
	})

	r.Get("/options/{list}", oh.HandleList)

	return r
}

// requestCounter counts requests by route pattern and status class. The
// route pattern is only known after routing, so counting happens on the way
// back out.
func requestCounter(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(route, statusClass(ww.Status())).Inc()
		})
	}
}

func statusClass(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
