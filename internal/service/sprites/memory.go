package sprites

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"speakup-api/internal/apperr"
)

// MemoryStore is an in-memory ObjectStore used in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte // "bucket/key" -> data
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (s *MemoryStore) path(bucket, key string) string {
	return bucket + "/" + key
}

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[s.path(bucket, key)] = buf
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[s.path(bucket, key)]
	if !ok {
		return nil, apperr.Newf(apperr.ReasonNotFound, "object %s not found", key)
	}
	return data, nil
}

func (s *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	bucketPrefix := bucket + "/"
	for path := range s.objects {
		if !strings.HasPrefix(path, bucketPrefix) {
			continue
		}
		key := strings.TrimPrefix(path, bucketPrefix)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Remove(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, s.path(bucket, key))
	return nil
}

func (s *MemoryStore) SignedURL(ctx context.Context, bucket, key string, expiry time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[s.path(bucket, key)]; !ok {
		return "", apperr.Newf(apperr.ReasonNotFound, "object %s not found", key)
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", bucket, key, int(expiry.Seconds())), nil
}
