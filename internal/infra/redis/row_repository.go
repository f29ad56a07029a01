package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// RowsKey holds the JSON-encoded row snapshot.
const RowsKey = "deck:rows"

// RowLoader fetches raw content rows from a backing source (published sheet, workbook, DB).
type RowLoader interface {
	LoadRows(ctx context.Context) ([][]string, error)
}

// RowRepository caches the row snapshot in Redis so every instance shares one
// fetch per freshness window, and falls back to the loader on a miss.
type RowRepository struct {
	client    *redis.Client
	loader    RowLoader
	freshness time.Duration
	log       logrus.FieldLogger
	sf        singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewRowRepository(client *redis.Client, loader RowLoader, freshness time.Duration, log logrus.FieldLogger) *RowRepository {
	return &RowRepository{
		client:    client,
		loader:    loader,
		freshness: freshness,
		log:       log,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RowRepository) Rows(ctx context.Context) ([][]string, error) {
	if rows, ok := r.cached(ctx); ok {
		return rows, nil
	}

	result, err, _ := r.sf.Do(RowsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if rows, ok := r.cached(ctx); ok {
			return rows, nil
		}

		rows, err := r.loader.LoadRows(ctx)
		if err != nil {
			return nil, err
		}

		r.store(ctx, rows)
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([][]string), nil
}

// Invalidate deletes the shared snapshot.
func (r *RowRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, RowsKey).Err()
}

// Refresh loads a new snapshot and overwrites the shared key only when the
// load succeeds; on failure the current key keeps serving until it expires.
func (r *RowRepository) Refresh(ctx context.Context) ([][]string, error) {
	rows, err := r.loader.LoadRows(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, rows)
	return rows, nil
}

func (r *RowRepository) store(ctx context.Context, rows [][]string) {
	payload, err := json.Marshal(rows)
	if err != nil {
		r.log.WithError(err).Warn("encode rows for redis")
		return
	}
	if err := r.client.Set(ctx, RowsKey, payload, r.ttlWithJitter()).Err(); err != nil {
		r.log.WithError(err).Warn("cache rows in redis")
	}
}

func (r *RowRepository) cached(ctx context.Context) ([][]string, bool) {
	raw, err := r.client.Get(ctx, RowsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithError(err).Warn("read cached rows")
		}
		return nil, false
	}
	var rows [][]string
	if err := json.Unmarshal(raw, &rows); err != nil {
		r.log.WithError(err).Warn("discard corrupt cached rows")
		return nil, false
	}
	return rows, true
}

func (r *RowRepository) ttlWithJitter() time.Duration {
	if r.freshness <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	// add up to 10% jitter to spread expirations across instances
	jitterMax := int64(r.freshness) / 10
	return r.freshness + time.Duration(r.rnd.Int63n(jitterMax+1))
}
