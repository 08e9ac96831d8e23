package objectstore

import (
	"context"
	"sync"

	"kiosk/internal/core/domain/model/kernel"
)

// MemoryStore is an ObjectStore for tests and STORAGE_DRIVER=memory.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		deletes: make(map[string]int),
	}
}

func (s *MemoryStore) Put(_ context.Context, ref kernel.AssetRef, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[ref.String()] = data
	return nil
}

func (s *MemoryStore) Exists(_ context.Context, ref kernel.AssetRef) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[ref.String()]
	return ok, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ref kernel.AssetRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[ref.String()]; ok {
		s.deletes[ref.String()]++
	}
	delete(s.objects, ref.String())
	return nil
}

// Deletes counts deletions of ref that actually removed an object.
func (s *MemoryStore) Deletes(ref kernel.AssetRef) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deletes[ref.String()]
}
