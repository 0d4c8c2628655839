// internal/adapter/storage/memory_share_store.go

package storage

import (
	"context"
	"sync"

	"poidash/internal/domain/dashboard"
)

// MemoryShareStore keeps shares in process memory
type MemoryShareStore struct {
	mu     sync.RWMutex
	shares map[string]dashboard.Share
}

// NewMemoryShareStore creates an empty in-memory share store
func NewMemoryShareStore() *MemoryShareStore {
	return &MemoryShareStore{
		shares: make(map[string]dashboard.Share),
	}
}

// SaveShare stores the normalized persisted query under a new ID
func (s *MemoryShareStore) SaveShare(ctx context.Context, query string) (*dashboard.Share, error) {
	share := newShare(query)

	s.mu.Lock()
	s.shares[share.ID] = *share
	s.mu.Unlock()

	return share, nil
}

// GetShare retrieves a share by ID
func (s *MemoryShareStore) GetShare(ctx context.Context, id string) (*dashboard.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	share, ok := s.shares[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &share, nil
}

var _ dashboard.ShareStore = (*MemoryShareStore)(nil)
