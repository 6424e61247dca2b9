// Package cache holds the most recent search result so it can be exported
// without re-running the pipeline.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/buscajob/buscajob/internal/model"
)

// Result is one finished search.
type Result struct {
	Timestamp time.Time            `json:"timestamp"`
	Criteria  model.SearchCriteria `json:"criteria"`
	Postings  []model.JobPosting   `json:"vagas"`
}

// Store keeps the latest Result. Latest returns model.ErrNotFound when
// nothing was stored or the entry expired.
type Store interface {
	Put(ctx context.Context, r Result) error
	Latest(ctx context.Context) (Result, error)
	Close() error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	result  Result
	expires time.Time
	set     bool
}

// NewMemoryStore creates a MemoryStore; ttl <= 0 never expires.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
	m.set = true
	if m.ttl > 0 {
		m.expires = m.now().Add(m.ttl)
	}
	return nil
}

func (m *MemoryStore) Latest(_ context.Context) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set || (m.ttl > 0 && m.now().After(m.expires)) {
		return Result{}, model.ErrNotFound
	}
	return m.result, nil
}

func (m *MemoryStore) Close() error { return nil }
