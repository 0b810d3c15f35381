// Package jobs is the persistent thumbnail job queue. Jobs are claimed with
// SELECT ... FOR UPDATE SKIP LOCKED so several workers can drain it safely.
package jobs

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

type Repository interface {
	// Enqueue stores a queued job and fills its ID and CreatedAt.
	Enqueue(ctx context.Context, job *models.ThumbnailJob) (*models.ThumbnailJob, error)
	// Claim moves the oldest queued job to running and returns it.
	// common.ErrorNotFound means the queue is empty.
	Claim(ctx context.Context) (*models.ThumbnailJob, error)
	Complete(ctx context.Context, id int64) error
	Fail(ctx context.Context, id int64, reason string) error
	// Get returns common.ErrorNotFound for unknown ids.
	Get(ctx context.Context, id int64) (*models.ThumbnailJob, error)
}
