package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRowRepositoryCachesWithinFreshness(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	loader := &countingLoader{RowLoader: NewStaticRowLoader(sampleRows())}
	repo := NewRowRepositoryWithClock(loader, 24*time.Hour, func() time.Time { return now })

	if _, err := repo.Rows(context.Background()); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	now = now.Add(23 * time.Hour)
	if _, err := repo.Rows(context.Background()); err != nil {
		t.Fatalf("rows 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}

	now = now.Add(time.Hour)
	if _, err := repo.Rows(context.Background()); err != nil {
		t.Fatalf("rows 3: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected refetch after freshness window, loader calls %d", loader.count())
	}
}

func TestRowRepositoryInvalidate(t *testing.T) {
	loader := &countingLoader{RowLoader: NewStaticRowLoader(sampleRows())}
	repo := NewRowRepository(loader, time.Hour)

	_, _ = repo.Rows(context.Background())
	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = repo.Rows(context.Background())
	if loader.count() != 2 {
		t.Fatalf("expected refetch after invalidate, loader calls %d", loader.count())
	}
}

func TestRowRepositoryPropagatesLoaderError(t *testing.T) {
	boom := errors.New("sheet offline")
	repo := NewRowRepository(failingLoader{err: boom}, time.Hour)

	if _, err := repo.Rows(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

func TestRowRepositoryCollapsesConcurrentMisses(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{RowLoader: NewStaticRowLoader(sampleRows()), gate: release}
	repo := NewRowRepository(loader, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Rows(context.Background()); err != nil {
				t.Errorf("rows: %v", err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if loader.count() != 1 {
		t.Fatalf("expected a single load, got %d", loader.count())
	}
}

func TestRowRepositoryRefreshKeepsSnapshotOnFailure(t *testing.T) {
	now := time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	loader := &flakyLoader{rows: sampleRows(), failAfter: 1}
	repo := NewRowRepositoryWithClock(loader, 24*time.Hour, func() time.Time { return now })

	if _, err := repo.Rows(context.Background()); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if _, err := repo.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error from failing source")
	}

	now = now.Add(6 * time.Hour)
	rows, err := repo.Rows(context.Background())
	if err != nil {
		t.Fatalf("expected cached rows inside freshness window, got %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestRowRepositoryRefreshReplacesSnapshot(t *testing.T) {
	loader := &countingLoader{RowLoader: NewStaticRowLoader(sampleRows())}
	repo := NewRowRepository(loader, time.Hour)

	_, _ = repo.Rows(context.Background())
	if _, err := repo.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	_, _ = repo.Rows(context.Background())
	if loader.count() != 2 {
		t.Fatalf("expected one load for rows and one for refresh, got %d", loader.count())
	}
}

func TestRowRepositoryInvalidateDuringLoad(t *testing.T) {
	release := make(chan struct{})
	loader := &countingLoader{RowLoader: NewStaticRowLoader(sampleRows()), gate: release}
	repo := NewRowRepository(loader, time.Hour)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = repo.Rows(context.Background())
	}()
	for loader.count() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if err := repo.Invalidate(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(release)
	<-done

	if _, err := repo.Rows(context.Background()); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected the stale load to be discarded and a refetch, got %d loads", loader.count())
	}
}

type flakyLoader struct {
	mu        sync.Mutex
	rows      [][]string
	calls     int
	failAfter int
}

func (l *flakyLoader) LoadRows(context.Context) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.calls > l.failAfter {
		return nil, errors.New("sheet unreachable")
	}
	return l.rows, nil
}

type countingLoader struct {
	RowLoader
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) LoadRows(ctx context.Context) ([][]string, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	return l.RowLoader.LoadRows(ctx)
}

func (l *countingLoader) count() int { return int(l.calls.Load()) }

type failingLoader struct{ err error }

func (l failingLoader) LoadRows(context.Context) ([][]string, error) { return nil, l.err }

func sampleRows() [][]string {
	return [][]string{
		{"topic_id", "topic_name", "card_id", "image_url", "correct_answer"},
		{"art", "Art", "a1", "https://img/a1.jpg", "Mona Lisa"},
		{"art", "Art", "a2", "https://img/a2.jpg", "Starry Night"},
	}
}
