// Package thumbnails derives resized variants of uploaded images. Jobs come
// from the persistent queue and are drained by a pool of workers.
package thumbnails

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/storage"
)

// JobError is a failure attributable to the job itself. Its message is what
// gets recorded on the job.
type JobError struct {
	Reason string
}

func (e *JobError) Error() string {
	return e.Reason
}

func jobError(reason string) error {
	return &JobError{Reason: reason}
}

// Processor produces the variants of a single job.
type Processor struct {
	files        files.Repository
	store        storage.ContentStore
	storeTimeout time.Duration
	maxPixels    int64
}

// NewProcessor builds a Processor. Images declaring more than maxPixels
// pixels fail their job; maxPixels <= 0 means no limit.
func NewProcessor(f files.Repository, store storage.ContentStore, storeTimeout time.Duration, maxPixels int64) *Processor {
	return &Processor{files: f, store: store, storeTimeout: storeTimeout, maxPixels: maxPixels}
}

// bounded derives a context for one store call. d <= 0 means no deadline.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (p *Processor) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	return bounded(ctx, p.storeTimeout)
}

// Process writes one variant per width in job.Sizes next to the original.
// Variants written before a failure are kept; reprocessing overwrites them.
func (p *Processor) Process(ctx context.Context, job *models.ThumbnailJob) error {
	if job.FileID == "" {
		return jobError("Missing fileId")
	}
	if job.UserID == "" {
		return jobError("Missing userId")
	}

	f, err := p.lookup(ctx, job)
	if err != nil {
		return err
	}
	if f.StorageRef == "" {
		return jobError("File has no content")
	}

	data, err := p.load(ctx, f.StorageRef)
	if err != nil {
		return err
	}

	img, format, err := decode(data, p.maxPixels)
	if err != nil {
		return jobError(err.Error())
	}

	for _, width := range job.Sizes {
		if width <= 0 {
			return jobError(fmt.Sprintf("invalid width %d", width))
		}

		out, err := encode(resize(img, width), format)
		if err != nil {
			return err
		}

		if err := p.save(ctx, f.StorageRef, strconv.Itoa(width), out); err != nil {
			return fmt.Errorf("variant %d: %w", width, err)
		}
	}

	return nil
}

func (p *Processor) lookup(ctx context.Context, job *models.ThumbnailJob) (*models.File, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	f, err := p.files.GetOwned(ctx, job.FileID, job.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, jobError("File not found")
		}
		return nil, err
	}
	return f, nil
}

func (p *Processor) load(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	data, err := p.store.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, jobError("File content not found")
		}
		return nil, err
	}
	return data, nil
}

func (p *Processor) save(ctx context.Context, ref, suffix string, data []byte) error {
	ctx, cancel := p.bounded(ctx)
	defer cancel()

	_, err := p.store.PutDerived(ctx, ref, suffix, data)
	return err
}
