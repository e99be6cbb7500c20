package workflow

import (
	"context"
	"sync"
)

// MemoryStore keeps all instances in process memory. It is the default store
// and is durable for the lifetime of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{instances: make(map[string]*Instance)}
}

func (s *MemoryStore) Create(_ context.Context, in *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[in.ID] = in.snapshot()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.instances[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return in.snapshot(), nil
}

func (s *MemoryStore) Update(_ context.Context, in *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[in.ID]; !ok {
		return &NotFoundError{ID: in.ID}
	}
	s.instances[in.ID] = in.snapshot()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Instance, 0, len(s.instances))
	for _, in := range s.instances {
		out = append(out, in.snapshot())
	}
	return out, nil
}

func (s *MemoryStore) ListByEntity(_ context.Context, entityID, entityType string) ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Instance
	for _, in := range s.instances {
		if in.EntityID == entityID && in.EntityType == entityType {
			out = append(out, in.snapshot())
		}
	}
	return out, nil
}

func (s *MemoryStore) ListActive(_ context.Context) ([]*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Instance
	for _, in := range s.instances {
		if in.Active() {
			out = append(out, in.snapshot())
		}
	}
	return out, nil
}
