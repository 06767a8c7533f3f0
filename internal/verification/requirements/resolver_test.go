package requirements

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
)

func TestIndividualRequirements(t *testing.T) {
	r := New()
	steps := r.Resolve(id.ClassificationIndividual, id.UserTypeProducer)
	assert.Equal(t, []Step{StepPhoneConfirmation, StepIdentityProof}, steps)
}

func TestBusinessRequirementsIncludeLicense(t *testing.T) {
	r := New()
	steps := r.Resolve(id.ClassificationBusiness, id.UserTypeTrader)
	assert.Equal(t, []Step{StepPhoneConfirmation, StepIdentityProof, StepBusinessLicense}, steps)
}

func TestPurchaserNeverNeedsLicense(t *testing.T) {
	r := New()
	steps := r.Resolve(id.ClassificationBusiness, id.UserTypePurchaser)
	assert.NotContains(t, steps, StepBusinessLicense)
}

func TestUnknownClassificationFallsBackAndWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := New(WithLogger(logger))

	steps := r.Resolve(id.AccountClassification("cooperative"), id.UserTypeProducer)
	assert.Equal(t, []Step{StepPhoneConfirmation, StepIdentityProof}, steps)
	assert.Contains(t, buf.String(), "unknown account classification")
}

func TestRequiredDocuments(t *testing.T) {
	r := New()
	assert.Equal(t,
		[]models.DocumentKind{models.KindIdentityProof},
		r.RequiredDocuments(id.ClassificationIndividual, id.UserTypeProducer))
	assert.Equal(t,
		[]models.DocumentKind{models.KindIdentityProof, models.KindBusinessLicense},
		r.RequiredDocuments(id.ClassificationBusiness, id.UserTypeProducer))
}

func TestResolveIsStable(t *testing.T) {
	r := New()
	first := r.Resolve(id.ClassificationBusiness, id.UserTypeTrader)
	second := r.Resolve(id.ClassificationBusiness, id.UserTypeTrader)
	assert.Equal(t, first, second)
}
