package review

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrilink/internal/blob"
	"agrilink/internal/phone"
	"agrilink/internal/verification/models"
	"agrilink/internal/verification/progress"
	"agrilink/internal/verification/requirements"
	verification "agrilink/internal/verification/service"
	documentstore "agrilink/internal/verification/store/document"
	requeststore "agrilink/internal/verification/store/request"
	subjectstore "agrilink/internal/verification/store/subject"
	id "agrilink/pkg/domain"
	dErrors "agrilink/pkg/domain-errors"
	"agrilink/pkg/requestcontext"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newReviewFixture(t *testing.T) (*Service, *verification.Service, verification.Stores) {
	t.Helper()
	stores := verification.Stores{
		Subjects:  subjectstore.NewInMemoryStore(),
		Documents: documentstore.NewInMemoryStore(),
		Requests:  requeststore.NewInMemoryStore(),
	}
	resolver := requirements.New()
	evaluator := progress.New(resolver)
	svc := verification.NewService(verification.NewShardedTx(stores), stores,
		blob.NewInMemory(), phone.NewInMemoryGateway(), resolver, evaluator,
		verification.Limits{MaxDocumentBytes: 10 << 20, AllowedContentType: "image/", PhoneRegion: "MM"})
	return NewService(stores.Subjects, stores.Documents, stores.Requests, svc), svc, stores
}

func submitSubject(t *testing.T, svc *verification.Service, at time.Time) id.SubjectID {
	t.Helper()
	ctx := requestcontext.WithTime(context.Background(), at)
	subjectID := id.NewSubjectID()
	_, err := svc.CreateSubject(ctx, subjectID, id.UserTypeProducer, id.ClassificationIndividual, "")
	require.NoError(t, err)

	confirmPhone(t, svc, ctx, subjectID)
	content := "fake-image"
	_, err = svc.UploadDocument(ctx, subjectID, verification.Upload{
		Kind:        models.KindIdentityProof,
		FileName:    "id.jpg",
		ContentType: "image/jpeg",
		ByteSize:    int64(len(content)),
		Content:     strings.NewReader(content),
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, subjectID)
	require.NoError(t, err)
	return subjectID
}

func confirmPhone(t *testing.T, svc *verification.Service, ctx context.Context, subjectID id.SubjectID) {
	t.Helper()
	require.NoError(t, svc.SendPhoneCode(ctx, subjectID, "+959799123456"))
	_, err := svc.ConfirmPhone(ctx, subjectID, "+959799123456", "000000")
	require.NoError(t, err)
}

func TestQueueIsFIFO(t *testing.T) {
	review, svc, _ := newReviewFixture(t)

	first := submitSubject(t, svc, t0)
	second := submitSubject(t, svc, t0.Add(time.Hour))

	pending, err := review.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first, pending[0].SubjectID)
	assert.Equal(t, second, pending[1].SubjectID)
}

func TestCaseFile(t *testing.T) {
	review, svc, _ := newReviewFixture(t)
	subjectID := submitSubject(t, svc, t0)

	caseFile, err := review.Case(context.Background(), subjectID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, caseFile.Subject.Status)
	assert.Equal(t, models.OutcomePending, caseFile.Request.Outcome)
	require.Len(t, caseFile.Documents, 1)
	assert.Equal(t, models.DocumentUnderReview, caseFile.Documents[0].Status)
}

func TestCaseWithoutPendingRequest(t *testing.T) {
	review, svc, _ := newReviewFixture(t)
	ctx := requestcontext.WithTime(context.Background(), t0)
	subjectID := id.NewSubjectID()
	_, err := svc.CreateSubject(ctx, subjectID, id.UserTypeProducer, id.ClassificationIndividual, "")
	require.NoError(t, err)

	_, err = review.Case(context.Background(), subjectID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDecisionsResolveQueue(t *testing.T) {
	review, svc, _ := newReviewFixture(t)
	approved := submitSubject(t, svc, t0)
	rejected := submitSubject(t, svc, t0.Add(time.Minute))

	ctx := requestcontext.WithTime(context.Background(), t0.Add(time.Hour))
	reviewerID := id.ReviewerID(uuid.New())

	subject, err := review.Approve(ctx, approved, reviewerID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, subject.Status)

	subject, err = review.Reject(ctx, rejected, reviewerID, "photo unreadable")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, subject.Status)

	pending, err := review.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	resolved, err := review.ListResolved(context.Background())
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
}
