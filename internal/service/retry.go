// Package service provides the deal engine and conversation aggregation logic.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rizq/internal/middleware"
	"rizq/internal/models"
	"rizq/internal/observability"

	"github.com/cenkalti/backoff/v5"
)

// RetryPolicy bounds retries of transient store errors.
type RetryPolicy struct {
	MaxTries uint
	Initial  time.Duration
}

// DefaultRetryPolicy is three tries starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxTries: 3, Initial: 100 * time.Millisecond}
}

// NoRetry runs every call once.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxTries: 1}
}

// retry runs fn until it succeeds, fails with a non-transient error or the
// policy is exhausted. Only reads and idempotent updates go through it.
func retry[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	if p.MaxTries <= 1 {
		return fn(ctx)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.Initial
	b.MaxInterval = 2 * time.Second

	value, err := backoff.Retry(ctx, func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !models.IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(p.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			observability.StoreRetries.WithLabelValues(op).Inc()
			middleware.Logger.WarnContext(ctx, "retrying transient store error",
				slog.String("operation", op),
				slog.Duration("next", next),
				slog.String("error", err.Error()),
			)
		}),
	)
	var appErr *models.AppError
	if err != nil && ctx.Err() != nil && !errors.As(err, &appErr) {
		// The request context ended while waiting between tries.
		err = models.NewTransientError(err)
	}
	return value, err
}

// retryErr is retry for calls without a result.
func retryErr(ctx context.Context, p RetryPolicy, op string, fn func(context.Context) error) error {
	_, err := retry(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
