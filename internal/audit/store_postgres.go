package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "agrilink/pkg/domain"
	txcontext "agrilink/pkg/platform/tx"
)

// PostgresStore persists audit events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (id, occurred_at, subject_id, actor_id, action, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		event.Timestamp,
		uuid.UUID(event.SubjectID),
		event.ActorID,
		string(event.Action),
		event.Decision,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]Event, error) {
	query := `
		SELECT occurred_at, subject_id, actor_id, action, decision, reason, request_id
		FROM audit_events
		WHERE subject_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(subjectID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event Event
			sid   uuid.UUID
		)
		var action string
		if err := rows.Scan(&event.Timestamp, &sid, &event.ActorID, &action,
			&event.Decision, &event.Reason, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.SubjectID = id.SubjectID(sid)
		event.Action = Action(action)
		events = append(events, event)
	}
	return events, rows.Err()
}
