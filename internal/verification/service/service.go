// Package service implements the verification state machine and document
// lifecycle. Every mutation runs inside the Tx boundary and commits through
// an optimistic version check on the subject, so concurrent writers resolve
// to exactly one winner.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"agrilink/internal/audit"
	"agrilink/internal/blob"
	"agrilink/internal/phone"
	"agrilink/internal/verification/metrics"
	"agrilink/internal/verification/models"
	"agrilink/internal/verification/progress"
	"agrilink/internal/verification/requirements"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
	"agrilink/pkg/platform/sentinel"
	"agrilink/pkg/requestcontext"
)

// SubjectStore persists verification subjects. Update performs an
// optimistic version check and returns sentinel.ErrVersionConflict when the
// stored version does not match.
type SubjectStore interface {
	Create(ctx context.Context, subject *models.Subject) error
	FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error)
	Update(ctx context.Context, subject *models.Subject, expectedVersion int64) error
}

// DocumentStore persists live document records, one per (subject, kind).
type DocumentStore interface {
	Put(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) (*models.Document, error)
	Delete(ctx context.Context, subjectID id.SubjectID, kind models.DocumentKind) error
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]models.Document, error)
	UpdateStatusBySubject(ctx context.Context, subjectID id.SubjectID, from, to models.DocumentStatus) error
	DeleteBySubject(ctx context.Context, subjectID id.SubjectID) error
}

// RequestStore persists submission snapshots. Close resolves a pending
// request exactly once and returns sentinel.ErrAlreadyResolved afterwards.
type RequestStore interface {
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.Request, error)
	FindPending(ctx context.Context, subjectID id.SubjectID) (*models.Request, error)
	Close(ctx context.Context, requestID id.RequestID, outcome models.Outcome, reviewerID id.ReviewerID, notes string, decidedAt time.Time) error
	ListPending(ctx context.Context) ([]models.Request, error)
	ListResolved(ctx context.Context) ([]models.Request, error)
	ListBySubject(ctx context.Context, subjectID id.SubjectID) ([]models.Request, error)
	LatestRejected(ctx context.Context, subjectID id.SubjectID) (*models.Request, error)
}

// Stores bundles the three verification stores so a transaction hands the
// callback a consistent set.
type Stores struct {
	Subjects  SubjectStore
	Documents DocumentStore
	Requests  RequestStore
}

// Tx provides a transactional boundary for verification mutations.
// Implementations may wrap a database transaction or, in-memory, a sharded
// lock keyed by subject. The callback receives the context to use for every
// store call inside the transaction.
type Tx interface {
	RunInTx(ctx context.Context, subjectID id.SubjectID, fn func(ctx context.Context, stores Stores) error) error
}

// Limits carries the configured document constraints.
type Limits struct {
	MaxDocumentBytes   int64
	AllowedContentType string
	PhoneRegion        string
}

// Service orchestrates all verification state transitions. It is the only
// writer of subject status.
type Service struct {
	tx        Tx
	stores    Stores
	blobs     blob.Store
	gateway   phone.Gateway
	resolver  *requirements.Resolver
	evaluator *progress.Evaluator
	limits    Limits

	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher *audit.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(tx Tx, stores Stores, blobs blob.Store, gateway phone.Gateway,
	resolver *requirements.Resolver, evaluator *progress.Evaluator, limits Limits, opts ...Option) *Service {
	s := &Service{
		tx:        tx,
		stores:    stores,
		blobs:     blobs,
		gateway:   gateway,
		resolver:  resolver,
		evaluator: evaluator,
		limits:    limits,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSubject registers a subject at not_started. Registration calls this
// once per account; duplicate creation is a conflict.
func (s *Service) CreateSubject(ctx context.Context, subjectID id.SubjectID, userType id.UserType,
	classification id.AccountClassification, businessName string) (*models.Subject, error) {
	subject, err := models.NewSubject(subjectID, userType, classification, businessName, s.now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.stores.Subjects.Create(ctx, subject); err != nil {
		return nil, translateStoreErr(err, "subject already registered")
	}
	return subject, nil
}

// now pins wall time to the request when the middleware set one, so every
// write inside a request observes the same instant.
func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx)
}

func (s *Service) loadSubject(ctx context.Context, store SubjectStore, subjectID id.SubjectID) (*models.Subject, error) {
	subject, err := store.FindByID(ctx, subjectID)
	if err != nil {
		return nil, translateStoreErr(err, "verification subject not found")
	}
	return subject, nil
}

func (s *Service) documentIndex(ctx context.Context, store DocumentStore, subjectID id.SubjectID) (map[models.DocumentKind]*models.Document, error) {
	docs, err := store.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list documents")
	}
	indexed := make(map[models.DocumentKind]*models.Document, len(docs))
	for i := range docs {
		indexed[docs[i].Kind] = &docs[i]
	}
	return indexed, nil
}

// translateStoreErr maps sentinel store errors onto tagged domain errors.
func translateStoreErr(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrVersionConflict):
		return dErrors.Wrap(err, dErrors.CodeStaleState, "subject was modified concurrently, retry")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "conflicting record already exists")
	case errors.Is(err, sentinel.ErrAlreadyResolved):
		return dErrors.Wrap(err, dErrors.CodeConflict, "request already resolved")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "operation not allowed in current state")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}

func (s *Service) emit(ctx context.Context, subjectID id.SubjectID, action audit.Action, decision, reason string) {
	if s.publisher == nil {
		return
	}
	s.publisher.Emit(audit.Event{
		Timestamp: s.now(ctx),
		SubjectID: subjectID,
		ActorID:   s.actorID(ctx),
		Action:    action,
		Decision:  decision,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
}

// actorID resolves who performed the action: the reviewer for admin
// operations, otherwise the subject acting on their own behalf.
func (s *Service) actorID(ctx context.Context) string {
	if reviewerID := requestcontext.ReviewerID(ctx); !reviewerID.IsNil() {
		return reviewerID.String()
	}
	if subjectID := requestcontext.SubjectID(ctx); !subjectID.IsNil() {
		return subjectID.String()
	}
	return ""
}

func (s *Service) recordTransition(to models.Status) {
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(to))
	}
}

func (s *Service) recordUpload(result string) {
	if s.metrics != nil {
		s.metrics.IncrementUpload(result)
	}
}
