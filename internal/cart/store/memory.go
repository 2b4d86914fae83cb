package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory. Entries live until deleted or
// swept by PurgeBefore.
type MemoryStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	blobs   map[string]string
	written map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock stamps every Save with now().
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		now:     now,
		blobs:   make(map[string]string),
		written: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Save(ctx context.Context, key, blob string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob
	m.written[key] = m.now()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	blob, ok := m.blobs[key]
	return blob, ok, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	delete(m.written, key)
	return nil
}

// PurgeBefore drops snapshots last written before cutoff.
func (m *MemoryStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for key, at := range m.written {
		if at.Before(cutoff) {
			delete(m.blobs, key)
			delete(m.written, key)
			purged++
		}
	}
	return purged, nil
}

// Len reports how many snapshots are held.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
