// Package document persists uploaded verification artifacts keyed by
// (subject, kind). Distinct kinds never contend; writes to the same slot are
// last-writer-wins, with state preconditions enforced above in the service.
package document

import (
	"context"
	"sort"
	"sync"

	id "agrilink/pkg/domain"
	"agrilink/internal/verification/models"
	"agrilink/pkg/platform/sentinel"
)

type docKey struct {
	subjectID id.SubjectID
	kind      models.DocumentKind
}

// InMemoryStore is the test and single-node implementation.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs map[docKey]models.Document
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{docs: make(map[docKey]models.Document)}
}

func (s *InMemoryStore) Put(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docKey{doc.SubjectID, doc.Kind}] = *doc
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subjectID id.SubjectID, kind models.DocumentKind) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.docs[docKey{subjectID, kind}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := stored
	return &copied, nil
}

func (s *InMemoryStore) Delete(_ context.Context, subjectID id.SubjectID, kind models.DocumentKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := docKey{subjectID, kind}
	if _, ok := s.docs[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.docs, key)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subjectID id.SubjectID) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Document
	for key, doc := range s.docs {
		if key.subjectID == subjectID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

// UpdateStatusBySubject moves every document currently in from to to. Used by
// approve/reject to mark the whole submitted set in one step.
func (s *InMemoryStore) UpdateStatusBySubject(_ context.Context, subjectID id.SubjectID, from, to models.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, doc := range s.docs {
		if key.subjectID == subjectID && doc.Status == from {
			doc.Status = to
			s.docs[key] = doc
		}
	}
	return nil
}

// DeleteBySubject removes all live documents for a subject. Resolved request
// snapshots keep their own copies, so history survives this.
func (s *InMemoryStore) DeleteBySubject(_ context.Context, subjectID id.SubjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.docs {
		if key.subjectID == subjectID {
			delete(s.docs, key)
		}
	}
	return nil
}
