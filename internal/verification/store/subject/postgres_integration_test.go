//go:build integration

package subject_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"agrilink/internal/verification/models"
	"agrilink/internal/verification/store/subject"
	id "agrilink/pkg/domain"
	"agrilink/pkg/platform/sentinel"
	"agrilink/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *subject.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = subject.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"audit_events", "verification_requests", "verification_documents", "verification_subjects")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newSubject() *models.Subject {
	sub, err := models.NewSubject(id.NewSubjectID(), id.UserTypeProducer,
		id.ClassificationBusiness, "Golden Paddy Trading", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	return sub
}

func (s *PostgresStoreSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	sub := s.newSubject()
	s.Require().NoError(s.store.Create(ctx, sub))

	found, err := s.store.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.ID, found.ID)
	s.Equal(models.StatusNotStarted, found.Status)
	s.Equal(int64(1), found.Version)
	s.Equal("Golden Paddy Trading", found.BusinessName)
}

func (s *PostgresStoreSuite) TestDuplicateCreateConflicts() {
	ctx := context.Background()
	sub := s.newSubject()
	s.Require().NoError(s.store.Create(ctx, sub))
	err := s.store.Create(ctx, sub)
	s.Require().True(errors.Is(err, sentinel.ErrConflict))
}

func (s *PostgresStoreSuite) TestFindMissingSubject() {
	_, err := s.store.FindByID(context.Background(), id.NewSubjectID())
	s.Require().True(errors.Is(err, sentinel.ErrNotFound))
}

// TestConcurrentUpdateSingleWinner verifies the version check resolves
// concurrent writers to exactly one success against a real database.
func (s *PostgresStoreSuite) TestConcurrentUpdateSingleWinner() {
	ctx := context.Background()
	sub := s.newSubject()
	s.Require().NoError(s.store.Create(ctx, sub))

	const goroutines = 32
	var wg sync.WaitGroup
	var wins atomic.Int32
	var conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fresh, err := s.store.FindByID(ctx, sub.ID)
			if err != nil {
				return
			}
			fresh.ApplyPhoneConfirmed("+959799123456", time.Now().UTC())
			err = s.store.Update(ctx, fresh, 1)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrVersionConflict):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one writer must win")
	s.Equal(int32(goroutines-1), conflicts.Load())

	final, err := s.store.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), final.Version)
	s.True(final.PhoneConfirmed)
}

func (s *PostgresStoreSuite) TestUpdatePersistsDecisionFields() {
	ctx := context.Background()
	sub := s.newSubject()
	s.Require().NoError(s.store.Create(ctx, sub))

	now := time.Now().UTC().Truncate(time.Microsecond)
	sub.ApplyPhoneConfirmed("+959799123456", now)
	sub.ApplySubmission(now)
	reviewerID := id.ReviewerID(uuid.New())
	sub.ApplyRejection(reviewerID, "blurry ID", now)
	s.Require().NoError(s.store.Update(ctx, sub, 1))

	found, err := s.store.FindByID(ctx, sub.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, found.Status)
	s.Equal("blurry ID", found.DecisionNotes)
	s.Require().NotNil(found.DecidedBy)
	s.Equal(reviewerID, *found.DecidedBy)
}
