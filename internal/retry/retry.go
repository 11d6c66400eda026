package retry

import (
	"context"
	"time"
)

// Do runs op, retrying per p while it fails with a transient error.
// Returns nil on success, the context error if ctx ends while waiting,
// or the last error from op.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	err := op(ctx)
	for retry := 0; err != nil && retry < p.MaxRetries; retry++ {
		if !p.classify(err) {
			return err
		}

		delay := p.Delay(retry)
		if p.OnRetry != nil {
			p.OnRetry(retry, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = op(ctx)
	}
	return err
}
