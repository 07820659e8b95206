package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// storeItem represents a single value in the store with its expiration
type storeItem[T any] struct {
	Value      T
	Expiration time.Time
}

// MemoryStore is a thread-safe in-memory store with sliding TTL expiration.
// Values are kept by reference, so pointers stored here stay shared.
type MemoryStore[T any] struct {
	data  map[string]storeItem[T]
	ttl   time.Duration
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryStore creates a new in-memory store whose entries expire after ttl
// without access
func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	store := &MemoryStore[T]{
		data: make(map[string]storeItem[T]),
		ttl:  ttl,
		stop: make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired entries every 10 minutes
	go store.cleanupExpired(10 * time.Minute)

	return store
}

// Get retrieves a value and extends its expiration
func (s *MemoryStore[T]) Get(ctx context.Context, key string) (T, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var zero T
	item, exists := s.data[key]
	if !exists {
		return zero, domain.ErrSessionNotFound
	}

	// Check if expired
	now := time.Now()
	if now.After(item.Expiration) {
		delete(s.data, key)
		return zero, domain.ErrSessionNotFound
	}

	item.Expiration = now.Add(s.ttl)
	s.data[key] = item
	return item.Value, nil
}

// Put stores a value under key
func (s *MemoryStore[T]) Put(ctx context.Context, key string, value T) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = storeItem[T]{
		Value:      value,
		Expiration: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes a value from the store
func (s *MemoryStore[T]) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, key)
	return nil
}

// cleanupExpired removes expired entries periodically until Close is called
func (s *MemoryStore[T]) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *MemoryStore[T]) removeExpired() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for key, item := range s.data {
		if now.After(item.Expiration) {
			delete(s.data, key)
		}
	}
}

// Len returns the current number of entries, expired ones included until cleanup
func (s *MemoryStore[T]) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Close stops the cleanup goroutine
func (s *MemoryStore[T]) Close() {
	s.once.Do(func() { close(s.stop) })
}
