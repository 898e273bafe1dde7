package blobstore

import (
	"container/list"
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// CachingStore wraps a BlobStore and keeps the most recently read blobs in
// memory. Writes and deletes through the CachingStore invalidate the entry.
type CachingStore struct {
	inner    BlobStore
	capacity int64

	mu    sync.Mutex
	size  int64
	items map[string]*list.Element
	lru   *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type cacheEntry struct {
	name string
	data []byte
}

// NewCachingStore creates a new CachingStore holding at most capacity bytes.
// capacity defaults to 4MB if <= 0.
func NewCachingStore(inner BlobStore, capacity int64) *CachingStore {
	if capacity <= 0 {
		capacity = 4 << 20
	}
	return &CachingStore{
		inner:    inner,
		capacity: capacity,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
}

func (s *CachingStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	if el, ok := s.items[name]; ok {
		s.lru.MoveToFront(el)
		data := el.Value.(*cacheEntry).data
		s.mu.Unlock()
		s.hits.Add(1)
		return slices.Clone(data), nil
	}
	s.mu.Unlock()
	s.misses.Add(1)

	data, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	s.set(name, data)
	return data, nil
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// PutIfNotExists delegates to the inner store when it is a ConditionalStore.
// Otherwise it falls back to a non-atomic existence check.
func (s *CachingStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	if cs, ok := s.inner.(ConditionalStore); ok {
		return cs.PutIfNotExists(ctx, name, data)
	}
	if _, err := s.inner.Get(ctx, name); err == nil {
		return ErrExists
	}
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the number of cache hits and misses.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

func (s *CachingStore) set(name string, data []byte) {
	n := int64(len(data))
	if n > s.capacity {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[name]; ok {
		s.size -= int64(len(el.Value.(*cacheEntry).data))
		s.lru.Remove(el)
		delete(s.items, name)
	}
	for s.size+n > s.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			break
		}
		ent := oldest.Value.(*cacheEntry)
		s.size -= int64(len(ent.data))
		s.lru.Remove(oldest)
		delete(s.items, ent.name)
	}
	s.items[name] = s.lru.PushFront(&cacheEntry{name: name, data: slices.Clone(data)})
	s.size += n
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[name]; ok {
		s.size -= int64(len(el.Value.(*cacheEntry).data))
		s.lru.Remove(el)
		delete(s.items, name)
	}
}
