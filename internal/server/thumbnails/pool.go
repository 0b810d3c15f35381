package thumbnails

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// errorBackoff throttles workers while the queue itself is failing.
const errorBackoff = time.Second

// Pool runs workers that drain a Queue through a Processor.
type Pool struct {
	queue     Queue
	processor *Processor
	workers   int
	logger    logging.Logger
}

func NewPool(q Queue, p *Processor, workers int, l logging.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{queue: q, processor: p, workers: workers, logger: l}
}

// Run blocks until ctx is done and every worker has returned.
func (p *Pool) Run(ctx context.Context) {
	p.logger.Info(ctx, "Starting thumbnail workers", "workers", p.workers)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id)
		}(i)
	}
	wg.Wait()

	p.logger.Info(ctx, "Thumbnail workers stopped")
}

func (p *Pool) work(ctx context.Context, id int) {
	logger := p.logger.With("worker", id)

	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn(ctx, "dequeue failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(errorBackoff):
			}
			continue
		}

		p.handle(ctx, logger, job)
	}
}

func (p *Pool) handle(ctx context.Context, logger logging.Logger, job *models.ThumbnailJob) {
	err := p.safeProcess(ctx, job)

	// outcomes are recorded even when shutdown interrupted the job
	rctx := context.WithoutCancel(ctx)

	if err != nil {
		logger.Warn(ctx, "thumbnail job failed", "job", job.ID, "file", job.FileID, "error", err)
		if ferr := p.queue.Fail(rctx, job.ID, reason(err)); ferr != nil {
			logger.Error(ctx, "recording job failure", "job", job.ID, "error", ferr)
		}
		return
	}

	if cerr := p.queue.Complete(rctx, job.ID); cerr != nil {
		logger.Error(ctx, "recording job completion", "job", job.ID, "error", cerr)
		return
	}
	logger.Debug(ctx, "thumbnail job completed", "job", job.ID, "file", job.FileID)
}

func (p *Pool) safeProcess(ctx context.Context, job *models.ThumbnailJob) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.processor.Process(ctx, job)
}

// reason is the text stored on a failed job.
func reason(err error) string {
	var je *JobError
	if errors.As(err, &je) {
		return je.Reason
	}
	return err.Error()
}
