package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"credit-portal/internal/pkg/apperrors"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store, primarily for tests. Insertion order
// per collection is preserved, matching what list/query callers rely on
// for stable filtering and sorting.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

type memCollection struct {
	order []string
	docs  map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*memCollection)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) collection(name string) *memCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memCollection{docs: make(map[string]map[string]any)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) ListDocuments(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, Document{ID: id, Fields: cloneFields(c.docs[id])})
	}
	return out, nil
}

func (s *MemoryStore) GetDocument(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	fields, ok := c.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	return Document{ID: id, Fields: cloneFields(fields)}, nil
}

func (s *MemoryStore) AddDocument(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(collection, fields), nil
}

func (s *MemoryStore) AddDocumentCapped(_ context.Context, collection string, fields map[string]any, fieldPath string, equals any, maxCount int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	count := 0
	for _, id := range c.order {
		if fieldEquals(c.docs[id][fieldPath], equals) {
			count++
		}
	}
	if count >= maxCount {
		return "", fmt.Errorf("%w: %d of %d slots in use", apperrors.ErrLimitExceeded, count, maxCount)
	}
	return s.add(collection, fields), nil
}

func (s *MemoryStore) add(collection string, fields map[string]any) string {
	c := s.collection(collection)
	id := uuid.NewString()
	c.docs[id] = cloneFields(fields)
	c.order = append(c.order, id)
	return id
}

func (s *MemoryStore) UpdateDocument(_ context.Context, collection, id string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	fields, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	for k, v := range patch {
		fields[k] = v
	}
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) QueryDocuments(_ context.Context, collection, fieldPath string, equals any) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}
	var out []Document
	for _, id := range c.order {
		if fieldEquals(c.docs[id][fieldPath], equals) {
			out = append(out, Document{ID: id, Fields: cloneFields(c.docs[id])})
		}
	}
	return out, nil
}

func (s *MemoryStore) ArrayUnion(_ context.Context, collection, id, fieldPath string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}
	fields, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", apperrors.ErrNotFound, collection, id)
	}

	current, _ := fields[fieldPath].([]any)
	for _, existing := range current {
		if fieldEquals(existing, value) {
			return nil
		}
	}
	fields[fieldPath] = append(current, value)
	return nil
}

// fieldEquals compares through a JSON round-trip so that callers do not
// care whether a stored number arrived as int or float64.
func fieldEquals(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ra) == string(rb)
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
