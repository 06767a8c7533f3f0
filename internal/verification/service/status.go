package service

import (
	"context"
	"errors"

	"agrilink/internal/verification/models"
	"agrilink/internal/verification/requirements"
	id "agrilink/pkg/domain"
	"agrilink/pkg/platform/sentinel"
)

// StatusView is the caller-facing snapshot of a subject's verification.
type StatusView struct {
	Subject       *models.Subject         `json:"subject"`
	Progress      int                     `json:"progress"`
	RequiredSteps []requirements.Step     `json:"required_steps"`
	MissingSteps  []requirements.Step     `json:"missing_steps"`
	CanSubmit     bool                    `json:"can_submit"`
	Documents     []models.Document       `json:"documents"`
	Rejection     *models.RejectionRecord `json:"rejection,omitempty"`
}

// GetStatus assembles the full verification view: subject state, progress
// percentage, unmet steps, live documents, and the most recent rejection.
func (s *Service) GetStatus(ctx context.Context, subjectID id.SubjectID) (*StatusView, error) {
	subject, err := s.loadSubject(ctx, s.stores.Subjects, subjectID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documentIndex(ctx, s.stores.Documents, subjectID)
	if err != nil {
		return nil, err
	}

	ok, missing := s.evaluator.Gate(subject, docs)
	view := &StatusView{
		Subject:       subject,
		Progress:      s.evaluator.CachedProgress(ctx, subject, docs),
		RequiredSteps: s.resolver.Resolve(subject.Classification, subject.UserType),
		MissingSteps:  missing,
		CanSubmit:     ok,
	}
	for _, doc := range docs {
		view.Documents = append(view.Documents, *doc)
	}

	rejection, err := s.latestRejection(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	view.Rejection = rejection
	return view, nil
}

// RejectionHistory returns every resolved rejected request for a subject,
// most recent first. The history survives resubmission resets.
func (s *Service) RejectionHistory(ctx context.Context, subjectID id.SubjectID) ([]models.RejectionRecord, error) {
	requests, err := s.stores.Requests.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, translateStoreErr(err, "verification subject not found")
	}
	var records []models.RejectionRecord
	for i := range requests {
		if record := models.RejectionFromRequest(&requests[i]); record != nil {
			records = append(records, *record)
		}
	}
	return records, nil
}

func (s *Service) latestRejection(ctx context.Context, subjectID id.SubjectID) (*models.RejectionRecord, error) {
	latest, err := s.stores.Requests.LatestRejected(ctx, subjectID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateStoreErr(err, "verification subject not found")
	}
	return models.RejectionFromRequest(latest), nil
}
