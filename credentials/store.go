package credentials

import (
	"context"
	"sync"
	"time"
)

// Store persists credentials under an opaque key. TTL of 0 means no expiration.
type Store interface {
	// Load returns (nil, nil) when key is absent or expired.
	Load(ctx context.Context, key string) (*Credentials, error)
	Save(ctx context.Context, key string, c *Credentials, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MemoryStore is an in-memory Store that enforces TTL on Load.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memEntry
	now   func() time.Time
}

type memEntry struct {
	val       Credentials
	expiresAt time.Time // zero means no expiration
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Credentials, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, nil
	}
	c := entry.val
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, c *Credentials, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry{val: *c}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ Store = (*MemoryStore)(nil)

// Cached wraps next so its result is kept in store under key for ttl.
// A miss or expired entry calls next and saves the result.
func Cached(store Store, key string, ttl time.Duration, next Supplier) Supplier {
	return SupplierFunc(func(ctx context.Context) (Credentials, error) {
		if c, err := store.Load(ctx, key); err != nil {
			return Credentials{}, err
		} else if c != nil {
			return *c, nil
		}
		c, err := next.Credentials(ctx)
		if err != nil {
			return Credentials{}, err
		}
		if err := store.Save(ctx, key, &c, ttl); err != nil {
			return Credentials{}, err
		}
		return c, nil
	})
}

// FromStore reads key from store on every call, falling back to fallback when
// the entry is absent.
func FromStore(store Store, key string, fallback Credentials) Supplier {
	return SupplierFunc(func(ctx context.Context) (Credentials, error) {
		c, err := store.Load(ctx, key)
		if err != nil {
			return Credentials{}, err
		}
		if c == nil {
			return fallback, nil
		}
		return *c, nil
	})
}
