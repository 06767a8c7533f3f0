package service

import (
	"context"
	"time"

	"agrilink/internal/audit"
	"agrilink/internal/verification/models"
	"agrilink/internal/verification/requirements"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
)

// Submit moves an in_progress subject under review. The requirement gate is
// re-evaluated here against stored state; whatever the client claimed about
// its own readiness is irrelevant. On success a pending request snapshot is
// created and every live document moves to under_review.
func (s *Service) Submit(ctx context.Context, subjectID id.SubjectID) (*models.Request, error) {
	start := time.Now()

	var request *models.Request
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context, stores Stores) error {
		subject, err := s.loadSubject(ctx, stores.Subjects, subjectID)
		if err != nil {
			return err
		}
		if err := subject.CanSubmit(); err != nil {
			return err
		}

		docs, err := s.documentIndex(ctx, stores.Documents, subjectID)
		if err != nil {
			return err
		}
		if ok, missing := s.evaluator.Gate(subject, docs); !ok {
			return dErrors.NewWithDetails(dErrors.CodeGateNotSatisfied,
				"verification requirements are not complete", stepNames(missing))
		}

		now := s.now(ctx)
		subject.ApplySubmission(now)

		live := make([]models.Document, 0, len(docs))
		for _, doc := range docs {
			live = append(live, *doc)
		}
		request = models.NewRequest(id.NewRequestID(), subject, live, now)
		if err := stores.Requests.Create(ctx, request); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		if err := stores.Documents.UpdateStatusBySubject(ctx, subjectID,
			models.DocumentUploaded, models.DocumentUnderReview); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		if err := stores.Subjects.Update(ctx, subject, subject.Version); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(models.StatusUnderReview)
	if s.metrics != nil {
		s.metrics.PendingRequests.Inc()
		s.metrics.ObserveSubmit(start)
	}
	s.evaluator.Invalidate(ctx, subjectID.String())
	s.emit(ctx, subjectID, audit.ActionVerificationSubmit, "", "")
	return request, nil
}

func stepNames(steps []requirements.Step) []string {
	names := make([]string, len(steps))
	for i, step := range steps {
		names[i] = string(step)
	}
	return names
}
