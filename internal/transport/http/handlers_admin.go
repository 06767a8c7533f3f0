package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agrilink/internal/review"
	"agrilink/internal/verification/models"
	id "agrilink/pkg/domain"
	"agrilink/pkg/platform/httputil"
	"agrilink/pkg/requestcontext"
)

// DocumentOpener streams stored document content for review.
type DocumentOpener interface {
	OpenDocument(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) (*models.Document, io.ReadCloser, error)
}

// AdminHandler serves the review queue routes.
type AdminHandler struct {
	review *review.Service
	opener DocumentOpener
	logger *slog.Logger
}

func NewAdminHandler(review *review.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{review: review, logger: logger}
}

// WithDocumentOpener enables the document download route.
func (h *AdminHandler) WithDocumentOpener(opener DocumentOpener) *AdminHandler {
	h.opener = opener
	return h
}

// HandleListPending handles GET /admin/verifications/pending.
func (h *AdminHandler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.review.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": pending})
}

// HandleListResolved handles GET /admin/verifications/resolved.
func (h *AdminHandler) HandleListResolved(w http.ResponseWriter, r *http.Request) {
	resolved, err := h.review.ListResolved(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"requests": resolved})
}

// HandleCase handles GET /admin/verifications/{subjectID}.
func (h *AdminHandler) HandleCase(w http.ResponseWriter, r *http.Request) {
	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	caseFile, err := h.review.Case(r.Context(), subjectID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caseFile)
}

// HandleOpenDocument handles GET /admin/verifications/{subjectID}/documents/{kind}.
func (h *AdminHandler) HandleOpenDocument(w http.ResponseWriter, r *http.Request) {
	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	kind := models.DocumentKind(chi.URLParam(r, "kind"))
	doc, content, err := h.opener.OpenDocument(r.Context(), subjectID, kind)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.ByteSize, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.logger.WarnContext(r.Context(), "stream document failed",
			"subject_id", subjectID, "kind", kind, "error", err)
	}
}

type decisionRequest struct {
	ReviewerID string `json:"reviewer_id" valid:"required,uuid"`
	Notes      string `json:"notes"`
}

// HandleApprove handles POST /admin/verifications/{subjectID}/approve.
func (h *AdminHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.review.Approve)
}

// HandleReject handles POST /admin/verifications/{subjectID}/reject.
func (h *AdminHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.review.Reject)
}

func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error)) {
	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[decisionRequest](w, r, h.logger)
	if !ok {
		return
	}
	reviewerID, err := id.ParseReviewerID(req.ReviewerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ctx := requestcontext.WithReviewerID(r.Context(), reviewerID)
	subject, err := apply(ctx, subjectID, reviewerID, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subject)
}
