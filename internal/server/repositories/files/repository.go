// Package files is the file catalog: metadata records for folders and stored
// files, organised as a per-user tree.
package files

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// PageSize is the fixed number of records returned by ListChildren.
const PageSize = 20

type Repository interface {
	// Create inserts f and fills its ID, Seq and CreatedAt.
	Create(ctx context.Context, f *models.File) (*models.File, error)
	// Get returns common.ErrorNotFound for unknown or malformed ids.
	Get(ctx context.Context, id string) (*models.File, error)
	// GetOwned is Get restricted to records owned by userID.
	GetOwned(ctx context.Context, id, userID string) (*models.File, error)
	// ListChildren returns one page of userID's records under parentID in
	// insertion order. Pages start at 0; out of range pages are empty.
	ListChildren(ctx context.Context, userID, parentID string, page int) ([]*models.File, error)
	// SetPublic updates the visibility flag of a record owned by userID and
	// returns the updated record.
	SetPublic(ctx context.Context, id, userID string, value bool) (*models.File, error)
	Count(ctx context.Context) (int64, error)
}
