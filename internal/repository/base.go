// Package repository provides GORM-backed data access for profiles, items, deals and messages.
package repository

import (
	"context"
	"fmt"
	"time"

	"rizq/internal/observability"

	"gorm.io/gorm"
)

// DefaultTimeout bounds a repository call when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Option configures a repository.
type Option func(*store)

// WithTimeout sets the per-call deadline. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// store is the shared core of every repository: a handle plus a per-call deadline.
type store struct {
	db      *gorm.DB
	timeout time.Duration
}

func newStore(db *gorm.DB, opts []Option) store {
	s := store{db: db, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// run executes fn with the per-call deadline applied, records its latency
// and translates any error. onUnique is passed to translateError.
func (s store) run(ctx context.Context, op string, onUnique func(error) error, fn func(db *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	defer observability.TrackQuery(op)()

	err := fn(s.db.WithContext(ctx))
	if err != nil && ctx.Err() != nil {
		// Drivers report a cancelled query in their own words; keep the deadline visible.
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return translateError(op, err, onUnique)
}
