// Package sessions is the session store: it maps opaque tokens to user ids
// and enforces their time to live.
package sessions

import (
	"context"
	"time"
)

// Repository issues, resolves and revokes session tokens.
type Repository interface {
	// Create issues a fresh random token for userID valid for ttl.
	Create(ctx context.Context, userID string, ttl time.Duration) (string, error)
	// Resolve returns the user id behind token, or common.ErrorNotFound when the
	// token is unknown or expired. It has no side effects.
	Resolve(ctx context.Context, token string) (string, error)
	// Invalidate removes token immediately; common.ErrorNotFound if it is already gone.
	Invalidate(ctx context.Context, token string) error
	// PurgeExpired deletes expired tokens and returns how many were removed.
	PurgeExpired(ctx context.Context) (int64, error)
}
