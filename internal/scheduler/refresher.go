package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// RowCache is the part of the row repository the refresher drives.
// Refresh must keep the current snapshot when the reload fails.
type RowCache interface {
	Refresh(ctx context.Context) ([][]string, error)
}

// Refresher periodically reloads the row cache so players never wait on a
// cold fetch.
type Refresher struct {
	scheduler *gocron.Scheduler
	cache     RowCache
	interval  time.Duration
	timeout   time.Duration
	log       logrus.FieldLogger
}

func NewRefresher(cache RowCache, interval time.Duration, log logrus.FieldLogger) *Refresher {
	return &Refresher{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     cache,
		interval:  interval,
		timeout:   30 * time.Second,
		log:       log,
	}
}

// Start schedules the refresh job without blocking. The first run waits one interval.
func (r *Refresher) Start() error {
	if _, err := r.scheduler.Every(r.interval).WaitForSchedule().Do(r.Refresh); err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduled job.
func (r *Refresher) Stop() {
	r.scheduler.Stop()
}

// Refresh reloads the row snapshot; on failure the cached rows stay in place.
func (r *Refresher) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	rows, err := r.cache.Refresh(ctx)
	if err != nil {
		r.log.WithError(err).Warn("refresh row cache, keeping current snapshot")
		return
	}
	r.log.WithField("rows", len(rows)).Info("row cache refreshed")
}
