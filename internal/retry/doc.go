// Package retry re-runs connection attempts that fail for transient reasons.
//
//	err := retry.Do(ctx, retry.DefaultPolicy(), func(ctx context.Context) error {
//	    conn, err = pgx.ConnectConfig(ctx, cfg)
//	    return err
//	})
//
// Only errors classified by IsTransient are retried; anything else is
// returned from the first attempt unchanged.
package retry
