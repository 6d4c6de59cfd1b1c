// Package retry re-runs startup operations that depend on services which may
// still be coming up (database, object storage).
package retry

import (
	"context"
	"fmt"
	"time"

	"leadgen_backend/platform/logger"

	goretry "github.com/sethvargo/go-retry"
)

const defaultBaseDelay = time.Second

// Do calls fn up to attempts times with a linear backoff: baseDelay, 2×baseDelay, ...
// The returned error wraps the last failure.
func Do(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts %d", name, attempts)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	attempt := 0
	backoff := goretry.WithMaxRetries(uint64(attempts-1), goretry.NewLinear(baseDelay))
	err := goretry.Do(ctx, backoff, func(_ context.Context) error {
		attempt++
		if err := fn(); err != nil {
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
			return goretry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
