package transport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agrilink/internal/platform/metrics"
	"agrilink/internal/verification/models"
	verification "agrilink/internal/verification/service"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
	"agrilink/pkg/platform/httputil"
	"agrilink/pkg/requestcontext"
)

// VerificationHandler serves the self-service verification routes. The
// acting subject always comes from the bearer token; a client can never
// operate on someone else's verification.
type VerificationHandler struct {
	service *verification.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewVerificationHandler(service *verification.Service, logger *slog.Logger) *VerificationHandler {
	return &VerificationHandler{service: service, logger: logger}
}

// WithMetrics attaches service-level metrics. Safe to skip in tests.
func (h *VerificationHandler) WithMetrics(m *metrics.Metrics) *VerificationHandler {
	h.metrics = m
	return h
}

// withRetryOnStale retries fn once when the optimistic version check lost.
// A single retry absorbs the common benign interleaving (two tabs, double
// tap) without hiding persistent contention.
func withRetryOnStale(fn func() error) error {
	err := fn()
	if err != nil && dErrors.HasCode(err, dErrors.CodeStaleState) {
		return fn()
	}
	return err
}

func (h *VerificationHandler) subject(w http.ResponseWriter, r *http.Request) (id.SubjectID, bool) {
	subjectID := requestcontext.SubjectID(r.Context())
	if subjectID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return subjectID, false
	}
	return subjectID, true
}

// HandleGetStatus handles GET /verification/status.
func (h *VerificationHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetStatus(r.Context(), subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// HandleRejectionHistory handles GET /verification/rejection.
func (h *VerificationHandler) HandleRejectionHistory(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	history, err := h.service.RejectionHistory(r.Context(), subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"rejections": history})
}

type phoneSendRequest struct {
	Phone string `json:"phone" valid:"required"`
}

// HandleSendPhoneCode handles POST /verification/phone/send.
func (h *VerificationHandler) HandleSendPhoneCode(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[phoneSendRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := h.service.SendPhoneCode(r.Context(), subjectID, req.Phone); err != nil {
		h.logger.WarnContext(r.Context(), "send phone code failed",
			"subject_id", subjectID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type phoneConfirmRequest struct {
	Phone string `json:"phone" valid:"required"`
	Code  string `json:"code" valid:"required"`
}

// HandleConfirmPhone handles POST /verification/phone/confirm.
func (h *VerificationHandler) HandleConfirmPhone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[phoneConfirmRequest](w, r, h.logger)
	if !ok {
		return
	}
	var subject *models.Subject
	err := withRetryOnStale(func() error {
		var err error
		subject, err = h.service.ConfirmPhone(ctx, subjectID, req.Phone, req.Code)
		return err
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "phone confirmed", "subject_id", subjectID)
	httputil.WriteJSON(w, http.StatusOK, subject)
}

// HandleUploadDocument handles PUT /verification/documents/{kind}. The raw
// body is the document content; metadata travels in headers.
func (h *VerificationHandler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	kind := models.DocumentKind(chi.URLParam(r, "kind"))
	if r.ContentLength < 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "content length is required"))
		return
	}

	var doc *models.Document
	err := withRetryOnStale(func() error {
		var err error
		doc, err = h.service.UploadDocument(ctx, subjectID, verification.Upload{
			Kind:        kind,
			FileName:    r.Header.Get("X-File-Name"),
			ContentType: r.Header.Get("Content-Type"),
			ByteSize:    r.ContentLength,
			Content:     r.Body,
		})
		return err
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "document uploaded",
		"subject_id", subjectID, "kind", kind, "bytes", doc.ByteSize)
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

// HandleRemoveDocument handles DELETE /verification/documents/{kind}.
func (h *VerificationHandler) HandleRemoveDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	kind := models.DocumentKind(chi.URLParam(r, "kind"))
	err := withRetryOnStale(func() error {
		return h.service.RemoveDocument(ctx, subjectID, kind)
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSubmit handles POST /verification/submit.
func (h *VerificationHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	var request *models.Request
	err := withRetryOnStale(func() error {
		var err error
		request, err = h.service.Submit(ctx, subjectID)
		return err
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submission refused", "subject_id", subjectID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "verification submitted",
		"subject_id", subjectID, "request_id", request.ID)
	httputil.WriteJSON(w, http.StatusAccepted, request)
}

// HandleResubmit handles POST /verification/resubmit. It re-opens a rejected
// verification; the caller must upload fresh documents before submitting again.
func (h *VerificationHandler) HandleResubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subjectID, ok := h.subject(w, r)
	if !ok {
		return
	}
	var subject *models.Subject
	err := withRetryOnStale(func() error {
		var err error
		subject, err = h.service.ResubmitReset(ctx, subjectID)
		return err
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "verification reopened", "subject_id", subjectID)
	httputil.WriteJSON(w, http.StatusOK, subject)
}

type createSubjectRequest struct {
	SubjectID      string `json:"subject_id" valid:"required,uuid"`
	UserType       string `json:"user_type" valid:"required"`
	Classification string `json:"classification"`
	BusinessName   string `json:"business_name"`
}

// HandleCreateSubject handles POST /verification/subjects. This is the
// registration hook; it stays behind the dev-routes flag until the account
// service calls it directly.
func (h *VerificationHandler) HandleCreateSubject(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[createSubjectRequest](w, r, h.logger)
	if !ok {
		return
	}
	subjectID, err := id.ParseSubjectID(req.SubjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	subject, err := h.service.CreateSubject(r.Context(), subjectID,
		id.UserType(req.UserType), id.AccountClassification(req.Classification), req.BusinessName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementSubjectsCreated()
	}
	httputil.WriteJSON(w, http.StatusCreated, subject)
}
