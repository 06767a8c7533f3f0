// Package requirements resolves the ordered set of verification steps a
// subject must complete, based on account classification and user type.
// It replaces the per-user-type label heuristics of the old dashboard with
// one explicit decision table.
package requirements

import (
	"log/slog"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
)

// Step is one unit of verification work shown to the subject.
type Step string

const (
	StepPhoneConfirmation Step = "phone_confirmation"
	StepIdentityProof     Step = "identity_proof"
	StepBusinessLicense   Step = "business_license"
)

// DocumentKind maps a document step to its document slot. Returns false for
// steps that are not document steps.
func (s Step) DocumentKind() (models.DocumentKind, bool) {
	switch s {
	case StepIdentityProof:
		return models.KindIdentityProof, true
	case StepBusinessLicense:
		return models.KindBusinessLicense, true
	}
	return "", false
}

// Resolver computes required steps. It has no failure modes: unknown
// classifications fall back to the individual set with a warning so bad
// reference data never blocks a user.
type Resolver struct {
	logger *slog.Logger
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ordered required steps for a subject. Phone
// confirmation and identity proof are always required. Business accounts
// additionally need a business license, except purchasers: they never
// provide one regardless of the classification flag (policy override).
func (r *Resolver) Resolve(classification id.AccountClassification, userType id.UserType) []Step {
	if !classification.Known() {
		if r.logger != nil {
			r.logger.Warn("unknown account classification, using individual requirements",
				"classification", string(classification),
				"user_type", string(userType),
			)
		}
		classification = id.ClassificationIndividual
	}

	steps := []Step{StepPhoneConfirmation, StepIdentityProof}
	if classification == id.ClassificationBusiness && userType != id.UserTypePurchaser {
		steps = append(steps, StepBusinessLicense)
	}
	return steps
}

// RequiredDocuments returns just the document kinds the subject must upload.
func (r *Resolver) RequiredDocuments(classification id.AccountClassification, userType id.UserType) []models.DocumentKind {
	var kinds []models.DocumentKind
	for _, step := range r.Resolve(classification, userType) {
		if kind, ok := step.DocumentKind(); ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}
