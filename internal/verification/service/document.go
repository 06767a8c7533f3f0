package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"agrilink/internal/audit"
	"agrilink/internal/verification/models"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
)

// Upload carries one incoming document.
type Upload struct {
	Kind        models.DocumentKind
	FileName    string
	ContentType string
	ByteSize    int64
	Content     io.Reader
}

// UploadDocument validates and stores one document. Uploading to an
// occupied (subject, kind) slot replaces the previous document and its
// content. Permitted while the subject is not_started (which starts the
// attempt), in_progress, or rejected.
func (s *Service) UploadDocument(ctx context.Context, subjectID id.SubjectID, upload Upload) (*models.Document, error) {
	if !upload.Kind.Known() {
		s.recordUpload("rejected_kind")
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown document kind: "+string(upload.Kind))
	}
	if upload.ByteSize <= 0 || upload.ByteSize > s.limits.MaxDocumentBytes {
		s.recordUpload("rejected_size")
		return nil, dErrors.New(dErrors.CodePayloadTooLarge,
			fmt.Sprintf("document must be between 1 byte and %d bytes", s.limits.MaxDocumentBytes))
	}
	if !strings.HasPrefix(upload.ContentType, s.limits.AllowedContentType) {
		s.recordUpload("rejected_type")
		return nil, dErrors.New(dErrors.CodeUnsupportedMedia,
			"content type "+upload.ContentType+" is not accepted")
	}

	contentRef := fmt.Sprintf("%s/%s/%s", subjectID, upload.Kind, uuid.NewString())

	var (
		doc        *models.Document
		replaced   string
		entered    models.Status
		savedBytes bool
	)
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context, stores Stores) error {
		subject, err := s.loadSubject(ctx, stores.Subjects, subjectID)
		if err != nil {
			return err
		}
		switch subject.Status {
		case models.StatusNotStarted, models.StatusInProgress, models.StatusRejected:
		default:
			s.recordUpload("rejected_state")
			return dErrors.New(dErrors.CodeInvalidState,
				"documents cannot change while verification is "+string(subject.Status))
		}

		// Replacing a slot orphans the old content; remember the ref so
		// it can be cleaned up after commit.
		if existing, err := stores.Documents.Get(ctx, subjectID, upload.Kind); err == nil {
			replaced = existing.ContentRef
		}

		// Content goes in before the record so a crash never leaves a
		// record pointing at nothing. An orphaned blob is harmless.
		if err := s.blobs.Save(ctx, contentRef, upload.Content); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "store document content")
		}
		savedBytes = true

		now := s.now(ctx)
		doc = &models.Document{
			SubjectID:   subjectID,
			Kind:        upload.Kind,
			Status:      models.DocumentUploaded,
			FileName:    upload.FileName,
			ByteSize:    upload.ByteSize,
			ContentType: upload.ContentType,
			ContentRef:  contentRef,
			UploadedAt:  now,
		}
		if err := stores.Documents.Put(ctx, doc); err != nil {
			return translateStoreErr(err, "verification subject not found")
		}

		if subject.Status == models.StatusNotStarted {
			subject.ApplyStart(now)
			if err := stores.Subjects.Update(ctx, subject, subject.Version); err != nil {
				return translateStoreErr(err, "verification subject not found")
			}
			entered = subject.Status
		}
		return nil
	})
	if err != nil {
		if savedBytes {
			_ = s.blobs.Delete(ctx, contentRef)
		}
		return nil, err
	}

	if replaced != "" && replaced != contentRef {
		if err := s.blobs.Delete(ctx, replaced); err != nil {
			s.logger.WarnContext(ctx, "orphaned document content", "ref", replaced, "error", err)
		}
	}
	if entered != "" {
		s.recordTransition(entered)
	}
	s.recordUpload("accepted")
	s.evaluator.Invalidate(ctx, subjectID.String())
	s.emit(ctx, subjectID, audit.ActionDocumentUploaded, "", string(upload.Kind))
	return doc, nil
}

// RemoveDocument deletes a live document and its content. Permitted only
// while the subject is in_progress or rejected.
func (s *Service) RemoveDocument(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) error {
	if !kind.Known() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown document kind: "+string(kind))
	}

	var contentRef string
	err := s.tx.RunInTx(ctx, subjectID, func(ctx context.Context, stores Stores) error {
		subject, err := s.loadSubject(ctx, stores.Subjects, subjectID)
		if err != nil {
			return err
		}
		if subject.Status != models.StatusInProgress && subject.Status != models.StatusRejected {
			return dErrors.New(dErrors.CodeInvalidState,
				"documents cannot change while verification is "+string(subject.Status))
		}
		doc, err := stores.Documents.Get(ctx, subjectID, kind)
		if err != nil {
			return translateStoreErr(err, "document not found")
		}
		contentRef = doc.ContentRef
		if err := stores.Documents.Delete(ctx, subjectID, kind); err != nil {
			return translateStoreErr(err, "document not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if contentRef != "" {
		if err := s.blobs.Delete(ctx, contentRef); err != nil {
			s.logger.WarnContext(ctx, "orphaned document content", "ref", contentRef, "error", err)
		}
	}
	s.evaluator.Invalidate(ctx, subjectID.String())
	s.emit(ctx, subjectID, audit.ActionDocumentRemoved, "", string(kind))
	return nil
}

// OpenDocument streams stored content for admin review.
func (s *Service) OpenDocument(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) (*models.Document, io.ReadCloser, error) {
	doc, err := s.stores.Documents.Get(ctx, subjectID, kind)
	if err != nil {
		return nil, nil, translateStoreErr(err, "document not found")
	}
	content, err := s.blobs.Open(ctx, doc.ContentRef)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "open document content")
	}
	return doc, content, nil
}
