package subject

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
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore persists subjects in the verification_subjects table. The
// version column backs the optimistic check; the UPDATE's WHERE clause is the
// compare-and-swap.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, subject *models.Subject) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_subjects
			(id, user_type, classification, business_name, phone_number, phone_confirmed,
			 status, version, submitted_at, decided_at, decided_by, decision_notes,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		uuid.UUID(subject.ID), subject.UserType, subject.Classification,
		subject.BusinessName, subject.PhoneNumber, subject.PhoneConfirmed,
		subject.Status, subject.Version, subject.SubmittedAt, subject.DecidedAt,
		reviewerValue(subject.DecidedBy), subject.DecisionNotes,
		subject.CreatedAt, subject.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, user_type, classification, business_name, phone_number, phone_confirmed,
		       status, version, submitted_at, decided_at, decided_by, decision_notes,
		       created_at, updated_at
		FROM verification_subjects
		WHERE id = $1`,
		uuid.UUID(subjectID),
	)
	return scanSubject(row)
}

func (s *PostgresStore) Update(ctx context.Context, subject *models.Subject, expectedVersion int64) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE verification_subjects
		SET phone_number = $1, phone_confirmed = $2, status = $3, version = $4,
		    submitted_at = $5, decided_at = $6, decided_by = $7, decision_notes = $8,
		    updated_at = $9
		WHERE id = $10 AND version = $11`,
		subject.PhoneNumber, subject.PhoneConfirmed, subject.Status, expectedVersion+1,
		subject.SubmittedAt, subject.DecidedAt, reviewerValue(subject.DecidedBy),
		subject.DecisionNotes, subject.UpdatedAt,
		uuid.UUID(subject.ID), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subject rows affected: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or the version moved; distinguish for callers.
		if _, findErr := s.FindByID(ctx, subject.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrVersionConflict
	}
	subject.Version = expectedVersion + 1
	return nil
}

func scanSubject(row *sql.Row) (*models.Subject, error) {
	var (
		subject   models.Subject
		rawID     uuid.UUID
		decidedBy uuid.NullUUID
	)
	err := row.Scan(
		&rawID, &subject.UserType, &subject.Classification, &subject.BusinessName,
		&subject.PhoneNumber, &subject.PhoneConfirmed, &subject.Status, &subject.Version,
		&subject.SubmittedAt, &subject.DecidedAt, &decidedBy, &subject.DecisionNotes,
		&subject.CreatedAt, &subject.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan subject: %w", err)
	}
	subject.ID = id.SubjectID(rawID)
	if decidedBy.Valid {
		reviewer := id.ReviewerID(decidedBy.UUID)
		subject.DecidedBy = &reviewer
	}
	return &subject, nil
}

func reviewerValue(reviewerID *id.ReviewerID) any {
	if reviewerID == nil {
		return nil
	}
	return uuid.UUID(*reviewerID)
}
