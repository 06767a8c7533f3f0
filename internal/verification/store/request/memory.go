// Package request persists verification request snapshots. Requests are
// append-only: Create adds a pending request, Close resolves it exactly once,
// and nothing ever rewrites a resolved request.
package request

import (
	"context"
	"sort"
	"sync"
	"time"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
)

// InMemoryStore is the test and single-node implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[id.RequestID]models.Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[id.RequestID]models.Request)}
}

// Create stores a pending request. At most one pending request may exist per
// subject; a second one is a conflict.
func (s *InMemoryStore) Create(_ context.Context, req *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stored := range s.requests {
		if stored.SubjectID == req.SubjectID && !stored.Resolved() {
			return sentinel.ErrConflict
		}
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := stored
	return &copied, nil
}

// FindPending returns the single unresolved request for a subject.
func (s *InMemoryStore) FindPending(_ context.Context, subjectID id.SubjectID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, stored := range s.requests {
		if stored.SubjectID == subjectID && !stored.Resolved() {
			copied := stored
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Close resolves a pending request. Resolving twice is an error: the first
// outcome stands.
func (s *InMemoryStore) Close(_ context.Context, requestID id.RequestID, outcome models.Outcome, reviewerID id.ReviewerID, notes string, decidedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.requests[requestID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if stored.Resolved() {
		return sentinel.ErrAlreadyResolved
	}
	stored.Outcome = outcome
	stored.DecidedAt = &decidedAt
	stored.DecidedBy = &reviewerID
	stored.Notes = notes
	s.requests[requestID] = stored
	return nil
}

// ListPending returns unresolved requests, oldest submission first, so the
// review queue is processed fairly.
func (s *InMemoryStore) ListPending(_ context.Context) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Request
	for _, stored := range s.requests {
		if !stored.Resolved() {
			out = append(out, stored)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// ListResolved returns the approved/rejected history, most recent decision first.
func (s *InMemoryStore) ListResolved(_ context.Context) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Request
	for _, stored := range s.requests {
		if stored.Resolved() {
			out = append(out, stored)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DecidedAt.After(*out[j].DecidedAt) })
	return out, nil
}

// ListBySubject returns all requests of one subject, newest submission first.
func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Request
	for _, stored := range s.requests {
		if stored.SubjectID == subjectID {
			out = append(out, stored)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

// LatestRejected returns the most recent rejected request for a subject, the
// source of the rejection record shown during resubmission.
func (s *InMemoryStore) LatestRejected(_ context.Context, subjectID id.SubjectID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.Request
	for _, stored := range s.requests {
		if stored.SubjectID != subjectID || stored.Outcome != models.OutcomeRejected {
			continue
		}
		copied := stored
		if latest == nil || copied.DecidedAt.After(*latest.DecidedAt) {
			latest = &copied
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}
