package thumbnails

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
)

// Queue hands jobs to workers and records their outcome.
type Queue interface {
	// Dequeue blocks until a job is available or ctx is done.
	Dequeue(ctx context.Context) (*models.ThumbnailJob, error)
	Complete(ctx context.Context, id int64) error
	Fail(ctx context.Context, id int64, reason string) error
}

// PollingQueue claims jobs from the thumbnail_jobs table, sleeping for the
// poll interval whenever it is empty. Every database call is bounded by the
// store timeout.
type PollingQueue struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	interval     time.Duration
	storeTimeout time.Duration
}

func NewPollingQueue(db *sql.DB, m repomanager.RepositoryManager, interval, storeTimeout time.Duration) *PollingQueue {
	return &PollingQueue{db: db, repomanager: m, interval: interval, storeTimeout: storeTimeout}
}

func (q *PollingQueue) claim(ctx context.Context) (*models.ThumbnailJob, error) {
	ctx, cancel := bounded(ctx, q.storeTimeout)
	defer cancel()

	return q.repomanager.Jobs(q.db).Claim(ctx)
}

func (q *PollingQueue) Dequeue(ctx context.Context) (*models.ThumbnailJob, error) {
	for {
		job, err := q.claim(ctx)
		if err == nil {
			return job, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.interval):
		}
	}
}

func (q *PollingQueue) Complete(ctx context.Context, id int64) error {
	ctx, cancel := bounded(ctx, q.storeTimeout)
	defer cancel()

	return q.repomanager.Jobs(q.db).Complete(ctx, id)
}

func (q *PollingQueue) Fail(ctx context.Context, id int64, reason string) error {
	ctx, cancel := bounded(ctx, q.storeTimeout)
	defer cancel()

	return q.repomanager.Jobs(q.db).Fail(ctx, id, reason)
}
