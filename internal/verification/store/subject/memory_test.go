package subject

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
)

func newStoredSubject(t *testing.T, store *InMemoryStore) *models.Subject {
	t.Helper()
	s, err := models.NewSubject(id.SubjectID(uuid.New()), id.UserTypeProducer, id.ClassificationIndividual, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), s))
	return s
}

func TestCreateAndFind(t *testing.T) {
	store := NewInMemoryStore()
	s := newStoredSubject(t, store)

	found, err := store.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)
	assert.Equal(t, models.StatusNotStarted, found.Status)
}

func TestCreateDuplicateConflicts(t *testing.T) {
	store := NewInMemoryStore()
	s := newStoredSubject(t, store)

	err := store.Create(context.Background(), s)
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestFindMissing(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.FindByID(context.Background(), id.SubjectID(uuid.New()))
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestUpdateBumpsVersion(t *testing.T) {
	store := NewInMemoryStore()
	s := newStoredSubject(t, store)

	s.ApplyPhoneConfirmed("+959123456789", time.Now())
	require.NoError(t, store.Update(context.Background(), s, 1))
	assert.Equal(t, int64(2), s.Version)

	found, err := store.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Version)
	assert.True(t, found.PhoneConfirmed)
}

func TestUpdateStaleVersionFails(t *testing.T) {
	store := NewInMemoryStore()
	s := newStoredSubject(t, store)

	first, err := store.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	second, err := store.FindByID(context.Background(), s.ID)
	require.NoError(t, err)

	first.ApplyPhoneConfirmed("+959123456789", time.Now())
	require.NoError(t, store.Update(context.Background(), first, 1))

	second.ApplyStart(time.Now())
	err = store.Update(context.Background(), second, 1)
	assert.ErrorIs(t, err, sentinel.ErrVersionConflict)
}

// TestConcurrentUpdateSingleWinner verifies the compare-and-swap contract:
// for N writers that all read the same version, exactly one commit succeeds.
func TestConcurrentUpdateSingleWinner(t *testing.T) {
	store := NewInMemoryStore()
	s := newStoredSubject(t, store)
	ctx := context.Background()

	const writers = 32
	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			copied := *s
			copied.ApplyPhoneConfirmed("+959123456789", time.Now())
			switch err := store.Update(ctx, &copied, 1); {
			case err == nil:
				wins.Add(1)
			default:
				assert.ErrorIs(t, err, sentinel.ErrVersionConflict)
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(writers-1), conflicts.Load())
}
