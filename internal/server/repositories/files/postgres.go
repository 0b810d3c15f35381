package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/google/uuid"
)

// maxPage keeps page*PageSize+PageSize within int.
const maxPage = (math.MaxInt - PageSize) / PageSize

const fileColumns = `id, user_id, name, type, parent_id, is_public, storage_ref, seq, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	f := &models.File{}
	var kind string
	if err := s.Scan(&f.ID, &f.UserID, &f.Name, &kind, &f.ParentID, &f.IsPublic, &f.StorageRef, &f.Seq, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Type = models.FileKind(kind)
	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.File) (*models.File, error) {
	if f.ParentID == "" {
		f.ParentID = common.RootParentID
	}

	query :=
		`INSERT INTO files (user_id, name, type, parent_id, is_public, storage_ref)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, seq, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, f.UserID, f.Name, string(f.Type), f.ParentID, f.IsPublic, f.StorageRef).
		Scan(&f.ID, &f.Seq, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetOwned(ctx context.Context, id, userID string) (*models.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, userID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.File, error) {
	f, err := scanFile(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) ListChildren(ctx context.Context, userID, parentID string, page int) ([]*models.File, error) {
	items := []*models.File{}
	// pages past maxPage cannot hold rows and would overflow the offset
	if page < 0 || page > maxPage {
		return items, nil
	}
	if parentID == "" {
		parentID = common.RootParentID
	}

	query :=
		`SELECT ` + fileColumns + ` FROM files
		 WHERE user_id = $1 AND parent_id = $2
		 ORDER BY seq
		 LIMIT $3 OFFSET $4
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, parentID, PageSize, page*PageSize)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		items = append(items, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) SetPublic(ctx context.Context, id, userID string, value bool) (*models.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query :=
		`UPDATE files SET is_public = $3
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + fileColumns

	return r.getOne(ctx, query, id, userID, value)
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
