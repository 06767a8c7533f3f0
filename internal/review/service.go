// Package review is the admin-facing workflow over the verification queue.
// It reads requests and documents directly but writes exclusively through
// the verification service, which stays the single authority on status
// transitions.
package review

import (
	"context"
	"errors"
	"log/slog"

	"agrilink/internal/verification/models"
	verification "agrilink/internal/verification/service"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
	"agrilink/pkg/platform/sentinel"
)

// Decider is the slice of the verification service the workflow needs for
// writes.
type Decider interface {
	Approve(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error)
	Reject(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error)
}

// Service assembles review queue views and applies decisions.
type Service struct {
	subjects  verification.SubjectStore
	documents verification.DocumentStore
	requests  verification.RequestStore
	decider   Decider
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(subjects verification.SubjectStore, documents verification.DocumentStore,
	requests verification.RequestStore, decider Decider, opts ...Option) *Service {
	s := &Service{
		subjects:  subjects,
		documents: documents,
		requests:  requests,
		decider:   decider,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListPending returns the review queue, oldest submission first.
func (s *Service) ListPending(ctx context.Context) ([]models.Request, error) {
	return s.requests.ListPending(ctx)
}

// ListResolved returns the approved/rejected history for audit.
func (s *Service) ListResolved(ctx context.Context) ([]models.Request, error) {
	return s.requests.ListResolved(ctx)
}

// CaseFile is everything a reviewer needs to decide one subject: the live
// subject, the pending request snapshot, and the current documents.
type CaseFile struct {
	Subject   *models.Subject   `json:"subject"`
	Request   *models.Request   `json:"request"`
	Documents []models.Document `json:"documents"`
}

// Case assembles the review context for one subject.
func (s *Service) Case(ctx context.Context, subjectID id.SubjectID) (*CaseFile, error) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "verification subject not found")
		}
		return nil, err
	}
	request, err := s.requests.FindPending(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "no pending verification request")
		}
		return nil, err
	}
	documents, err := s.documents.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return &CaseFile{Subject: subject, Request: request, Documents: documents}, nil
}

// Approve applies an approval through the verification service.
func (s *Service) Approve(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error) {
	subject, err := s.decider.Approve(ctx, subjectID, reviewerID, notes)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "verification approved",
		"subject_id", subjectID, "reviewer_id", reviewerID)
	return subject, nil
}

// Reject applies a rejection through the verification service.
func (s *Service) Reject(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error) {
	subject, err := s.decider.Reject(ctx, subjectID, reviewerID, notes)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "verification rejected",
		"subject_id", subjectID, "reviewer_id", reviewerID)
	return subject, nil
}
