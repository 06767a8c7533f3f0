package request

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
)

func pendingRequest(subjectID id.SubjectID, submittedAt time.Time) *models.Request {
	return &models.Request{
		ID:             id.NewRequestID(),
		SubjectID:      subjectID,
		UserType:       id.UserTypeProducer,
		Classification: id.ClassificationIndividual,
		PhoneConfirmed: true,
		SubmittedAt:    submittedAt,
		Outcome:        models.OutcomePending,
	}
}

func TestCreateRejectsSecondPending(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	subjectID := id.SubjectID(uuid.New())

	require.NoError(t, store.Create(ctx, pendingRequest(subjectID, time.Now())))
	err := store.Create(ctx, pendingRequest(subjectID, time.Now()))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestCloseResolvesExactlyOnce(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	req := pendingRequest(id.SubjectID(uuid.New()), time.Now())
	require.NoError(t, store.Create(ctx, req))

	reviewer := id.ReviewerID(uuid.New())
	now := time.Now()
	require.NoError(t, store.Close(ctx, req.ID, models.OutcomeRejected, reviewer, "blurry ID", now))

	err := store.Close(ctx, req.ID, models.OutcomeApproved, reviewer, "", now)
	assert.ErrorIs(t, err, sentinel.ErrAlreadyResolved)

	stored, err := store.FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeRejected, stored.Outcome)
	assert.Equal(t, "blurry ID", stored.Notes)
}

func TestCloseAllowsNewPendingRequest(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	subjectID := id.SubjectID(uuid.New())

	first := pendingRequest(subjectID, time.Now())
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Close(ctx, first.ID, models.OutcomeRejected, id.ReviewerID(uuid.New()), "no", time.Now()))

	require.NoError(t, store.Create(ctx, pendingRequest(subjectID, time.Now())))
}

func TestListPendingFIFO(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	base := time.Now()

	newest := pendingRequest(id.SubjectID(uuid.New()), base.Add(2*time.Hour))
	oldest := pendingRequest(id.SubjectID(uuid.New()), base)
	middle := pendingRequest(id.SubjectID(uuid.New()), base.Add(time.Hour))
	for _, r := range []*models.Request{newest, oldest, middle} {
		require.NoError(t, store.Create(ctx, r))
	}

	pending, err := store.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, oldest.ID, pending[0].ID)
	assert.Equal(t, middle.ID, pending[1].ID)
	assert.Equal(t, newest.ID, pending[2].ID)
}

func TestListResolvedExcludesPending(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	open := pendingRequest(id.SubjectID(uuid.New()), time.Now())
	closed := pendingRequest(id.SubjectID(uuid.New()), time.Now())
	require.NoError(t, store.Create(ctx, open))
	require.NoError(t, store.Create(ctx, closed))
	require.NoError(t, store.Close(ctx, closed.ID, models.OutcomeApproved, id.ReviewerID(uuid.New()), "", time.Now()))

	resolved, err := store.ListResolved(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, closed.ID, resolved[0].ID)
}

func TestLatestRejected(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	subjectID := id.SubjectID(uuid.New())
	reviewer := id.ReviewerID(uuid.New())
	base := time.Now()

	first := pendingRequest(subjectID, base)
	require.NoError(t, store.Create(ctx, first))
	require.NoError(t, store.Close(ctx, first.ID, models.OutcomeRejected, reviewer, "first attempt", base.Add(time.Minute)))

	second := pendingRequest(subjectID, base.Add(time.Hour))
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Close(ctx, second.ID, models.OutcomeRejected, reviewer, "second attempt", base.Add(2*time.Hour)))

	latest, err := store.LatestRejected(ctx, subjectID)
	require.NoError(t, err)
	assert.Equal(t, "second attempt", latest.Notes)
}

func TestLatestRejectedMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.LatestRejected(context.Background(), id.SubjectID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
