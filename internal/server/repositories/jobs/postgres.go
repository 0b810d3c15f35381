package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// encodeSizes stores widths as "500,250,100".
func encodeSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

func decodeSizes(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

func (r *PostgresRepository) Enqueue(ctx context.Context, job *models.ThumbnailJob) (*models.ThumbnailJob, error) {
	query :=
		`INSERT INTO thumbnail_jobs (user_id, file_id, sizes)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, job.UserID, job.FileID, encodeSizes(job.Sizes)).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	job.Status = models.JobQueued

	return job, nil
}

func (r *PostgresRepository) Claim(ctx context.Context) (*models.ThumbnailJob, error) {
	query :=
		`UPDATE thumbnail_jobs SET status = 'running', started_at = now()
		 WHERE id = (
		   SELECT id FROM thumbnail_jobs
		   WHERE status = 'queued'
		   ORDER BY id
		   FOR UPDATE SKIP LOCKED
		   LIMIT 1
		 )
		 RETURNING id, user_id, file_id, sizes, status, error, created_at, finished_at
		 `
	return r.getOne(ctx, query)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.ThumbnailJob, error) {
	query :=
		`SELECT id, user_id, file_id, sizes, status, error, created_at, finished_at
		 FROM thumbnail_jobs WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.ThumbnailJob, error) {
	job := &models.ThumbnailJob{}
	var (
		sizes    string
		status   string
		finished sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&job.ID, &job.UserID, &job.FileID, &sizes, &status, &job.Error, &job.CreatedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if job.Sizes, err = decodeSizes(sizes); err != nil {
		return nil, err
	}
	job.Status = models.JobStatus(status)
	if finished.Valid {
		job.FinishedAt = &finished.Time
	}

	return job, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id int64) error {
	return r.finish(ctx, id, models.JobCompleted, "")
}

func (r *PostgresRepository) Fail(ctx context.Context, id int64, reason string) error {
	return r.finish(ctx, id, models.JobFailed, reason)
}

func (r *PostgresRepository) finish(ctx context.Context, id int64, status models.JobStatus, reason string) error {
	query :=
		`UPDATE thumbnail_jobs SET status = $2, error = $3, finished_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, string(status), reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
