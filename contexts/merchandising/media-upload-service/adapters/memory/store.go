package memory

import (
	"context"
	"sync"
	"time"

	domainerrors "vitrine/contexts/merchandising/media-upload-service/domain/errors"
	"vitrine/contexts/merchandising/media-upload-service/ports"
)

// Store keeps uploaded blobs in process memory, addressed by content hash.
// Re-uploading identical bytes lands on the same ref, which keeps the store
// naturally deduplicated.
type Store struct {
	mu    sync.RWMutex
	blobs map[string]ports.Blob
}

func NewStore() *Store {
	return &Store{
		blobs: make(map[string]ports.Blob),
	}
}

func (s *Store) Put(_ context.Context, blob ports.Blob) (string, error) {
	if blob.Ref == "" {
		return "", domainerrors.ErrInvalidRequest
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[blob.Ref]; !exists {
		stored := blob
		stored.Data = append([]byte(nil), blob.Data...)
		s.blobs[blob.Ref] = stored
	}
	return "/media/" + blob.Ref, nil
}

func (s *Store) Get(_ context.Context, ref string) (ports.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[ref]
	if !ok {
		return ports.Blob{}, domainerrors.ErrMediaNotFound
	}
	out := blob
	out.Data = append([]byte(nil), blob.Data...)
	return out, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
