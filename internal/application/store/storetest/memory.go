// Package storetest provides an in-memory portfolio.Repository for tests of code built on the store.
package storetest

import (
	"context"
	"sync"

	"github.com/khoahotran/devfolio/internal/domain/portfolio"
)

// MemoryRepository keeps the last applied snapshot and records every mutation.
type MemoryRepository struct {
	mu      sync.Mutex
	data    portfolio.Data
	found   bool
	applied []portfolio.Mutation
	// ApplyErr, when set, fails every write.
	ApplyErr error
}

// NewMemoryRepository starts empty, so a store built on it serves its seed.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// NewMemoryRepositoryWith starts from stored data.
func NewMemoryRepositoryWith(d portfolio.Data) *MemoryRepository {
	return &MemoryRepository{data: d.Clone(), found: true}
}

func (r *MemoryRepository) Load(context.Context) (portfolio.Data, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone(), r.found, nil
}

func (r *MemoryRepository) Apply(_ context.Context, m portfolio.Mutation) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, m)
	if r.ApplyErr != nil {
		return "", r.ApplyErr
	}
	r.data = m.Snapshot.Clone()
	r.found = true
	return m.ID, nil
}

func (r *MemoryRepository) Subscribe(context.Context, func(portfolio.Snapshot)) error {
	return nil
}

func (r *MemoryRepository) Close() error { return nil }

// Applied returns the mutations written so far, oldest first.
func (r *MemoryRepository) Applied() []portfolio.Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]portfolio.Mutation(nil), r.applied...)
}

// Stored returns the last persisted aggregate.
func (r *MemoryRepository) Stored() portfolio.Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data.Clone()
}
