package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
	txcontext "agrilink/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresStore persists requests in the verification_requests table. The
// document snapshot is stored as JSONB because it is immutable and only ever
// read back whole. A partial unique index on (subject_id) WHERE outcome =
// 'pending' enforces the one-pending-request invariant in the database.
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

func (s *PostgresStore) Create(ctx context.Context, req *models.Request) error {
	docs, err := json.Marshal(req.Documents)
	if err != nil {
		return fmt.Errorf("marshal document snapshot: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO verification_requests
			(id, subject_id, user_type, classification, business_name, phone_confirmed,
			 documents, submitted_at, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(req.ID), uuid.UUID(req.SubjectID), req.UserType, req.Classification,
		req.BusinessName, req.PhoneConfirmed, docs, req.SubmittedAt, req.Outcome,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error) {
	return s.queryOne(ctx, `WHERE id = $1`, uuid.UUID(requestID))
}

func (s *PostgresStore) FindPending(ctx context.Context, subjectID id.SubjectID) (*models.Request, error) {
	return s.queryOne(ctx, `WHERE subject_id = $1 AND outcome = 'pending'`, uuid.UUID(subjectID))
}

func (s *PostgresStore) LatestRejected(ctx context.Context, subjectID id.SubjectID) (*models.Request, error) {
	return s.queryOne(ctx, `WHERE subject_id = $1 AND outcome = 'rejected' ORDER BY decided_at DESC LIMIT 1`, uuid.UUID(subjectID))
}

func (s *PostgresStore) Close(ctx context.Context, requestID id.RequestID, outcome models.Outcome, reviewerID id.ReviewerID, notes string, decidedAt time.Time) error {
	res, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE verification_requests
		SET outcome = $1, decided_at = $2, decided_by = $3, notes = $4
		WHERE id = $5 AND outcome = 'pending'`,
		outcome, decidedAt, uuid.UUID(reviewerID), notes, uuid.UUID(requestID),
	)
	if err != nil {
		return fmt.Errorf("close request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close request rows affected: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindByID(ctx, requestID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrAlreadyResolved
	}
	return nil
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]models.Request, error) {
	return s.queryMany(ctx, `WHERE outcome = 'pending' ORDER BY submitted_at ASC`)
}

func (s *PostgresStore) ListResolved(ctx context.Context) ([]models.Request, error) {
	return s.queryMany(ctx, `WHERE outcome <> 'pending' ORDER BY decided_at DESC`)
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]models.Request, error) {
	return s.queryMany(ctx, `WHERE subject_id = $1 ORDER BY submitted_at DESC`, uuid.UUID(subjectID))
}

const selectColumns = `
	SELECT id, subject_id, user_type, classification, business_name, phone_confirmed,
	       documents, submitted_at, outcome, decided_at, decided_by, notes
	FROM verification_requests `

func (s *PostgresStore) queryOne(ctx context.Context, clause string, args ...any) (*models.Request, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, selectColumns+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query request: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query request: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}
	return scanRequest(rows)
}

func (s *PostgresStore) queryMany(ctx context.Context, clause string, args ...any) ([]models.Request, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, selectColumns+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	var out []models.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func scanRequest(rows *sql.Rows) (*models.Request, error) {
	var (
		req       models.Request
		rawID     uuid.UUID
		rawSubj   uuid.UUID
		docs      []byte
		decidedBy uuid.NullUUID
	)
	err := rows.Scan(&rawID, &rawSubj, &req.UserType, &req.Classification,
		&req.BusinessName, &req.PhoneConfirmed, &docs, &req.SubmittedAt,
		&req.Outcome, &req.DecidedAt, &decidedBy, &req.Notes)
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	if err := json.Unmarshal(docs, &req.Documents); err != nil {
		return nil, fmt.Errorf("unmarshal document snapshot: %w", err)
	}
	req.ID = id.RequestID(rawID)
	req.SubjectID = id.SubjectID(rawSubj)
	if decidedBy.Valid {
		reviewer := id.ReviewerID(decidedBy.UUID)
		req.DecidedBy = &reviewer
	}
	return &req, nil
}
