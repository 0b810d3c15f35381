package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/logging"
)

// RunJanitor evicts expired sessions every interval until ctx is done.
// Each purge is bounded by timeout.
func RunJanitor(ctx context.Context, repo Repository, interval, timeout time.Duration, logger logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, timeout)
			n, err := repo.PurgeExpired(pctx)
			cancel()
			if err != nil {
				logger.Warn(ctx, "session purge failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}
