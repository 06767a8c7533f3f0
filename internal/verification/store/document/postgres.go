package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
	txcontext "agrilink/pkg/platform/tx"

	"github.com/google/uuid"
)

// PostgresStore persists documents in the verification_documents table with a
// (subject_id, kind) primary key, so Put is a plain upsert.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Put(ctx context.Context, doc *models.Document) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_documents
			(subject_id, kind, status, file_name, byte_size, content_type, content_ref, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (subject_id, kind) DO UPDATE SET
			status = EXCLUDED.status,
			file_name = EXCLUDED.file_name,
			byte_size = EXCLUDED.byte_size,
			content_type = EXCLUDED.content_type,
			content_ref = EXCLUDED.content_ref,
			uploaded_at = EXCLUDED.uploaded_at`,
		uuid.UUID(doc.SubjectID), doc.Kind, doc.Status, doc.FileName,
		doc.ByteSize, doc.ContentType, doc.ContentRef, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) (*models.Document, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT subject_id, kind, status, file_name, byte_size, content_type, content_ref, uploaded_at
		FROM verification_documents
		WHERE subject_id = $1 AND kind = $2`,
		uuid.UUID(subjectID), kind,
	)
	var (
		doc   models.Document
		rawID uuid.UUID
	)
	err := row.Scan(&rawID, &doc.Kind, &doc.Status, &doc.FileName,
		&doc.ByteSize, &doc.ContentType, &doc.ContentRef, &doc.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	doc.SubjectID = id.SubjectID(rawID)
	return &doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM verification_documents WHERE subject_id = $1 AND kind = $2`,
		uuid.UUID(subjectID), kind,
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]models.Document, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT subject_id, kind, status, file_name, byte_size, content_type, content_ref, uploaded_at
		FROM verification_documents
		WHERE subject_id = $1
		ORDER BY kind`,
		uuid.UUID(subjectID),
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var (
			doc   models.Document
			rawID uuid.UUID
		)
		if err := rows.Scan(&rawID, &doc.Kind, &doc.Status, &doc.FileName,
			&doc.ByteSize, &doc.ContentType, &doc.ContentRef, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc.SubjectID = id.SubjectID(rawID)
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateStatusBySubject(ctx context.Context, subjectID id.SubjectID, from, to models.DocumentStatus) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE verification_documents SET status = $1
		WHERE subject_id = $2 AND status = $3`,
		to, uuid.UUID(subjectID), from,
	)
	if err != nil {
		return fmt.Errorf("update document statuses: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBySubject(ctx context.Context, subjectID id.SubjectID) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		DELETE FROM verification_documents WHERE subject_id = $1`,
		uuid.UUID(subjectID),
	)
	if err != nil {
		return fmt.Errorf("delete subject documents: %w", err)
	}
	return nil
}
