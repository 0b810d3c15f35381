// Package users declares the repository contract for user accounts and its
// PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills its ID. A duplicate email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail returns common.ErrorNotFound when no such user exists.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByID returns common.ErrorNotFound when no such user exists.
	GetByID(ctx context.Context, id string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}
