// Package subject persists verification subjects. All writes go through a
// compare-and-swap on the subject version, which is the single locking
// discipline concurrent transitions rely on.
package subject

import (
	"context"
	"sync"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
)

// InMemoryStore is the test and single-node implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	subjects map[id.SubjectID]models.Subject
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{subjects: make(map[id.SubjectID]models.Subject)}
}

func (s *InMemoryStore) Create(_ context.Context, subject *models.Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subjects[subject.ID]; exists {
		return sentinel.ErrConflict
	}
	s.subjects[subject.ID] = *subject
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.subjects[subjectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := stored
	return &copied, nil
}

// Update commits the subject only if the stored version still equals
// expectedVersion, then bumps the version. Losing writers receive
// sentinel.ErrVersionConflict and must re-fetch.
func (s *InMemoryStore) Update(_ context.Context, subject *models.Subject, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.subjects[subject.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Version != expectedVersion {
		return sentinel.ErrVersionConflict
	}
	subject.Version = expectedVersion + 1
	s.subjects[subject.ID] = *subject
	return nil
}
