package service

import (
	"context"

	"agrilink/internal/audit"
	"agrilink/internal/phone"
	"agrilink/internal/verification/models"
	id "agrilink/pkg/domain"
)

// SendPhoneCode normalizes the number and asks the gateway to deliver a
// confirmation code. The subject must not have submitted yet.
func (s *Service) SendPhoneCode(ctx context.Context, subjectID id.SubjectID, phoneNumber string) error {
	normalized, err := phone.Normalize(phoneNumber, s.limits.PhoneRegion)
	if err != nil {
		return err
	}
	subject, err := s.loadSubject(ctx, s.stores.Subjects, subjectID)
	if err != nil {
		return err
	}
	if err := subject.CanConfirmPhone(); err != nil {
		return err
	}
	return s.gateway.SendCode(ctx, normalized)
}

// ConfirmPhone verifies the code with the gateway and marks the subject's
// phone confirmed, moving a fresh subject into in_progress. Confirming an
// already-confirmed phone is a no-op success.
func (s *Service) ConfirmPhone(ctx context.Context, subjectID id.SubjectID, phoneNumber, code string) (*models.Subject, error) {
	normalized, err := phone.Normalize(phoneNumber, s.limits.PhoneRegion)
	if err != nil {
		return nil, err
	}
	if err := s.gateway.VerifyCode(ctx, normalized, code); err != nil {
		return nil, err
	}

	var updated *models.Subject
	var entered models.Status
	err = s.tx.RunInTx(ctx, subjectID, func(ctx context.Context, stores Stores) error {
		subject, err := s.loadSubject(ctx, stores.Subjects, subjectID)
		if err != nil {
			return err
		}
		if subject.PhoneConfirmed && subject.PhoneNumber == normalized {
			updated = subject
			return nil
		}
		if err := subject.CanConfirmPhone(); err != nil {
			return err
		}
		before := subject.Status
		subject.ApplyPhoneConfirmed(normalized, s.now(ctx))
		if err := stores.Subjects.Update(ctx, subject, subject.Version); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}
		if subject.Status != before {
			entered = subject.Status
		}
		updated = subject
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entered != "" {
		s.recordTransition(entered)
	}
	s.evaluator.Invalidate(ctx, subjectID.String())
	s.emit(ctx, subjectID, audit.ActionPhoneConfirmed, "", "")
	return updated, nil
}
