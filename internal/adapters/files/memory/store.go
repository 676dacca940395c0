package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/files"
)

type Object struct {
	Body        []byte
	ContentType string
}

// Store guarda los blobs en memoria (dev y tests).
type Store struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewStore() *Store {
	return &Store{objects: make(map[string]Object)}
}

func (s *Store) Put(ctx context.Context, kind files.Kind, filename string, r io.Reader, contentType string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	key := files.ObjectKey(kind, filename)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Body: buf.Bytes(), ContentType: contentType}
	return key, nil
}

func (s *Store) Get(key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	if !ok {
		return Object{}, apperr.ErrNotFound
	}
	return o, nil
}
