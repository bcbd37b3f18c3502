package blob

import (
	"context"
	"sync"
)

// MemoryStore держит блобы в памяти процесса. Для разработки и тестов.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	signer *URLSigner
}

func NewMemoryStore(signer *URLSigner) *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte), signer: signer}
}

func (s *MemoryStore) Put(ctx context.Context, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := newRef()
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	s.data[ref] = buf
	s.mu.Unlock()
	return ref, nil
}

func (s *MemoryStore) AccessURL(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	_, ok := s.data[ref]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}
	return s.signer.Sign(ref)
}

func (s *MemoryStore) Open(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.data, ref)
	s.mu.Unlock()
	return nil
}

// Len количество блобов.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
