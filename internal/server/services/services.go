// Package services contains the server's business logic. Services validate
// input, apply the access control policy and translate repository and store
// failures into the sentinel errors of package common.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
)

// bounded derives a context that expires after d. A non-positive d only
// inherits the parent's deadline.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// translate keeps the errors callers are expected to branch on and folds
// everything else into ErrorUnavailable (deadline hit) or ErrorInternal. The
// original cause stays in the message for logging.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorConflict),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorInvalidOperation),
		errors.Is(err, common.ErrorUnavailable),
		errors.Is(err, common.ErrorInternal):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
}
