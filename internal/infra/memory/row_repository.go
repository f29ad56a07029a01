package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RowLoader fetches raw content rows from a backing source (published sheet, workbook, DB).
type RowLoader interface {
	LoadRows(ctx context.Context) ([][]string, error)
}

// RowRepository caches the row snapshot until it is older than the freshness window.
type RowRepository struct {
	loader    RowLoader
	freshness time.Duration
	clock     func() time.Time
	sf        singleflight.Group

	mu        sync.RWMutex
	rows      [][]string
	fetchedAt time.Time
	loaded    bool
	// gen is bumped by Invalidate and Refresh; a load started under an older
	// generation does not overwrite the snapshot.
	gen uint64
}

func NewRowRepository(loader RowLoader, freshness time.Duration) *RowRepository {
	return NewRowRepositoryWithClock(loader, freshness, time.Now)
}

// NewRowRepositoryWithClock is test-only for deterministic expiry.
func NewRowRepositoryWithClock(loader RowLoader, freshness time.Duration, clock func() time.Time) *RowRepository {
	return &RowRepository{
		loader:    loader,
		freshness: freshness,
		clock:     clock,
	}
}

func (r *RowRepository) Rows(ctx context.Context) ([][]string, error) {
	if rows, ok := r.fresh(r.clock()); ok {
		return rows, nil
	}

	result, err, _ := r.sf.Do("rows", func() (interface{}, error) {
		// Re-check in case another goroutine refreshed the snapshot.
		if rows, ok := r.fresh(r.clock()); ok {
			return rows, nil
		}

		r.mu.RLock()
		gen := r.gen
		r.mu.RUnlock()

		rows, err := r.loader.LoadRows(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if r.gen == gen {
			r.store(rows)
		}
		r.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([][]string), nil
}

// Invalidate drops the snapshot so the next call refetches.
func (r *RowRepository) Invalidate(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.loaded = false
	r.gen++
	return nil
}

// Refresh loads a new snapshot and swaps it in only when the load succeeds,
// so a failing source keeps serving the current snapshot.
func (r *RowRepository) Refresh(ctx context.Context) ([][]string, error) {
	rows, err := r.loader.LoadRows(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.store(rows)
	return rows, nil
}

// store requires r.mu held for writing.
func (r *RowRepository) store(rows [][]string) {
	r.rows = rows
	r.fetchedAt = r.clock()
	r.loaded = true
}

func (r *RowRepository) fresh(now time.Time) ([][]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded || !now.Before(r.fetchedAt.Add(r.freshness)) {
		return nil, false
	}
	return r.rows, true
}

// StaticRowLoader serves a fixed set of rows (useful for tests/demos).
type StaticRowLoader struct {
	rows [][]string
}

func NewStaticRowLoader(rows [][]string) *StaticRowLoader {
	return &StaticRowLoader{rows: rows}
}

func (l *StaticRowLoader) LoadRows(_ context.Context) ([][]string, error) {
	return l.rows, nil
}
