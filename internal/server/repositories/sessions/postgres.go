package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
)

// tokenBytes is the amount of randomness in a token (256 bits).
const tokenBytes = 32

// newToken is a seam for tests.
var newToken = func() (string, error) {
	return common.MakeRandHexString(tokenBytes)
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	query :=
		`INSERT INTO sessions (token, user_id, expires_at)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, query, token, userID, time.Now().Add(ttl)); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrorNotFound
	}

	query :=
		`SELECT user_id FROM sessions
		 WHERE token = $1 AND expires_at > now()
		 `

	var userID string
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return userID, nil
}

func (r *PostgresRepository) Invalidate(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1 AND expires_at > now()`, token)
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

func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}

	return n, nil
}
