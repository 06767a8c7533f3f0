// Package progress derives completion percentage and the submission gate from
// the authoritative server-side state. Clients only ever receive projections
// computed here; no mirrored flags.
package progress

import (
	"context"
	"log/slog"

	"agrilink/internal/verification/models"
	"agrilink/internal/verification/requirements"
)

// Evaluator computes progress and the submit gate. The cache is an
// optimization only: every value is recomputable from the subject and its
// documents, and document mutations invalidate it.
type Evaluator struct {
	resolver *requirements.Resolver
	cache    Cache
	logger   *slog.Logger
}

type Option func(*Evaluator)

func WithCache(cache Cache) Option {
	return func(e *Evaluator) { e.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

func New(resolver *requirements.Resolver, opts ...Option) *Evaluator {
	e := &Evaluator{resolver: resolver}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Progress returns the floor percentage of completed required steps, capped
// at 100. Document steps count contextually: once a subject is verified the
// history is authoritative regardless of live document state; after a
// rejection a document only counts if it was re-uploaded since the decision.
func (e *Evaluator) Progress(subject *models.Subject, docs map[models.DocumentKind]*models.Document) int {
	steps := e.resolver.Resolve(subject.Classification, subject.UserType)
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	for _, step := range steps {
		if e.stepComplete(step, subject, docs) {
			completed++
		}
	}
	pct := completed * 100 / len(steps)
	if pct > 100 {
		pct = 100
	}
	return pct
}

func (e *Evaluator) stepComplete(step requirements.Step, subject *models.Subject, docs map[models.DocumentKind]*models.Document) bool {
	if step == requirements.StepPhoneConfirmation {
		return subject.PhoneConfirmed
	}

	kind, ok := step.DocumentKind()
	if !ok {
		return false
	}
	if subject.Status == models.StatusVerified {
		// History is authoritative once verified.
		return true
	}
	doc := docs[kind]
	if doc == nil {
		return false
	}
	if subject.Status == models.StatusRejected {
		// Only a fresh upload since the decision counts toward the retry.
		return doc.Status == models.DocumentUploaded &&
			subject.DecidedAt != nil && doc.UploadedAt.After(*subject.DecidedAt)
	}
	// A document submitted for review stays a completed step; submission
	// must never lower the percentage the subject just saw.
	switch doc.Status {
	case models.DocumentUploaded, models.DocumentUnderReview, models.DocumentVerified:
		return true
	}
	return false
}

// Gate reports whether submission is currently permitted, and if not, the
// specific missing steps so callers can render actionable guidance. Missing
// steps are always user-actionable; a wrong status (already submitted,
// already decided) closes the gate with an empty missing list, since no
// upload or confirmation can open it. The state machine re-validates this
// server-side on every submit; a client-supplied flag is never trusted.
func (e *Evaluator) Gate(subject *models.Subject, docs map[models.DocumentKind]*models.Document) (bool, []requirements.Step) {
	var missing []requirements.Step

	if !subject.PhoneConfirmed {
		missing = append(missing, requirements.StepPhoneConfirmation)
	}
	for _, kind := range e.resolver.RequiredDocuments(subject.Classification, subject.UserType) {
		doc := docs[kind]
		if doc == nil || doc.Status != models.DocumentUploaded {
			missing = append(missing, stepForKind(kind))
		}
	}
	ok := len(missing) == 0 && subject.Status == models.StatusInProgress
	return ok, missing
}

func stepForKind(kind models.DocumentKind) requirements.Step {
	switch kind {
	case models.KindBusinessLicense:
		return requirements.StepBusinessLicense
	default:
		return requirements.StepIdentityProof
	}
}

// CachedProgress consults the cache before computing. Failures to read or
// write the cache degrade to a recompute, never to an error.
func (e *Evaluator) CachedProgress(ctx context.Context, subject *models.Subject, docs map[models.DocumentKind]*models.Document) int {
	if e.cache != nil {
		if pct, ok, err := e.cache.Get(ctx, subject.ID.String()); err == nil && ok {
			return pct
		} else if err != nil && e.logger != nil {
			e.logger.WarnContext(ctx, "progress cache read failed", "error", err)
		}
	}
	pct := e.Progress(subject, docs)
	if e.cache != nil {
		if err := e.cache.Set(ctx, subject.ID.String(), pct); err != nil && e.logger != nil {
			e.logger.WarnContext(ctx, "progress cache write failed", "error", err)
		}
	}
	return pct
}

// Invalidate drops any cached progress for a subject. Document store
// mutations and state transitions call this.
func (e *Evaluator) Invalidate(ctx context.Context, subjectID string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, subjectID); err != nil && e.logger != nil {
		e.logger.WarnContext(ctx, "progress cache invalidation failed", "error", err, "subject_id", subjectID)
	}
}
