package service

import (
	"context"
	"strings"
	"time"

	"agrilink/internal/audit"
	"agrilink/internal/verification/models"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
)

// Approve resolves a pending request as approved: the subject becomes
// verified and its documents are marked verified. Concurrent decisions on
// the same subject resolve to exactly one winner through the version check.
func (s *Service) Approve(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error) {
	return s.decide(ctx, subjectID, reviewerID, notes, models.OutcomeApproved)
}

// Reject resolves a pending request as rejected. Notes are mandatory: a
// rejection without actionable feedback is useless to the subject.
func (s *Service) Reject(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string) (*models.Subject, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, dErrors.New(dErrors.CodeMissingReviewNotes, "rejection requires review notes")
	}
	return s.decide(ctx, subjectID, reviewerID, notes, models.OutcomeRejected)
}

func (s *Service) decide(ctx context.Context, subjectID id.SubjectID, reviewerID id.ReviewerID, notes string, outcome models.Outcome) (*models.Subject, error) {
	if reviewerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "reviewer id is required")
	}
	start := time.Now()

	var updated *models.Subject
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context, stores Stores) error {
		subject, err := s.loadSubject(ctx, stores.Subjects, subjectID)
		if err != nil {
			return err
		}
		if err := subject.CanDecide(); err != nil {
			return err
		}
		pending, err := stores.Requests.FindPending(ctx, subjectID)
		if err != nil {
			return translateStoreErr(err, "no pending verification request")
		}

		now := s.now(ctx)
		docStatus := models.DocumentVerified
		if outcome == models.OutcomeRejected {
			docStatus = models.DocumentRejected
			subject.ApplyRejection(reviewerID, notes, now)
		} else {
			subject.ApplyApproval(reviewerID, notes, now)
		}

		// The subject CAS goes first: a losing concurrent decision then
		// fails with a retryable version conflict instead of tripping the
		// close-once guard on the request.
		if err := stores.Subjects.Update(ctx, subject, subject.Version); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		if err := stores.Requests.Close(ctx, pending.ID, outcome, reviewerID, notes, now); err != nil {
			return translateStoreErr(err, "no pending verification request")
		}
		if err := stores.Documents.UpdateStatusBySubject(ctx, subjectID,
			models.DocumentUnderReview, docStatus); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		updated = subject
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordTransition(updated.Status)
	if s.metrics != nil {
		s.metrics.PendingRequests.Dec()
		s.metrics.ObserveDecision(start)
	}
	s.evaluator.Invalidate(ctx, subjectID.String())
	action := audit.ActionVerificationApproved
	if outcome == models.OutcomeRejected {
		action = audit.ActionVerificationRejected
	}
	s.emit(ctx, subjectID, action, string(outcome), notes)
	return updated, nil
}

// ResubmitReset re-opens a rejected verification for another attempt. Live
// documents are cleared so the subject starts from a clean slate; resolved
// request snapshots, including the rejection that triggered the reset, are
// untouched.
func (s *Service) ResubmitReset(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	var (
		updated *models.Subject
		refs    []string
	)
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context, stores Stores) error {
		subject, err := s.loadSubject(ctx, stores.Subjects, subjectID)
		if err != nil {
			return err
		}
		if err := subject.CanReset(); err != nil {
			return err
		}

		docs, err := stores.Documents.ListBySubject(ctx, subjectID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
		}
		for _, doc := range docs {
			refs = append(refs, doc.ContentRef)
		}
		if err := stores.Documents.DeleteBySubject(ctx, subjectID); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}

		subject.ApplyReset(s.now(ctx))
		if err := stores.Subjects.Update(ctx, subject, subject.Version); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		updated = subject
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			s.logger.WarnContext(ctx, "orphaned document content", "ref", ref, "error", err)
		}
	}
	s.recordTransition(models.StatusInProgress)
	s.evaluator.Invalidate(ctx, subjectID.String())
	s.emit(ctx, subjectID, audit.ActionVerificationReset, "", "")
	return updated, nil
}
