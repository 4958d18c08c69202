package service

import (
	"context"
	"log/slog"
	"time"

	"rizq/internal/cache"
	"rizq/internal/middleware"
	"rizq/internal/models"
	"rizq/internal/observability"
	"rizq/internal/repository"

	"github.com/redis/go-redis/v9"
)

// ProfileDirectory resolves display snapshots of users, caching them in Redis
// when a client is configured.
type ProfileDirectory struct {
	repo  repository.ProfileRepository
	rdb   *redis.Client
	ttl   time.Duration
	retry RetryPolicy
}

// NewProfileDirectory returns a directory over repo. rdb may be nil.
func NewProfileDirectory(repo repository.ProfileRepository, rdb *redis.Client, ttl time.Duration, policy RetryPolicy) *ProfileDirectory {
	if ttl <= 0 {
		ttl = cache.ProfileTTL
	}
	return &ProfileDirectory{repo: repo, rdb: rdb, ttl: ttl, retry: policy}
}

// Lookup returns the snapshot of id or the store's error.
func (d *ProfileDirectory) Lookup(ctx context.Context, id uint) (models.ProfileSummary, error) {
	return cache.Aside(ctx, d.rdb, cache.ProfileKey(id), d.ttl, func(ctx context.Context) (models.ProfileSummary, error) {
		p, err := retry(ctx, d.retry, "profile.get", func(ctx context.Context) (*models.Profile, error) {
			return d.repo.GetByID(ctx, id)
		})
		if err != nil {
			return models.ProfileSummary{}, err
		}
		return p.Summary(), nil
	})
}

// Resolve returns the snapshot of id, or a placeholder when it cannot be loaded.
func (d *ProfileDirectory) Resolve(ctx context.Context, id uint) models.ProfileSummary {
	summary, err := d.Lookup(ctx, id)
	if err != nil {
		degraded(ctx, "profile", err, slog.Uint64("profile_id", uint64(id)))
		return models.UnknownProfile(id)
	}
	return summary
}

// ResolveMany loads every id in one query. Ids that cannot be loaded map to a placeholder.
func (d *ProfileDirectory) ResolveMany(ctx context.Context, ids []uint) map[uint]models.ProfileSummary {
	out := make(map[uint]models.ProfileSummary, len(ids))
	profiles, err := retry(ctx, d.retry, "profile.list_by_ids", func(ctx context.Context) ([]models.Profile, error) {
		return d.repo.ListByIDs(ctx, ids)
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "profile batch lookup failed", slog.Int("count", len(ids)), slog.String("error", err.Error()))
	}
	for i := range profiles {
		out[profiles[i].ID] = profiles[i].Summary()
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			degraded(ctx, "profile", err, slog.Uint64("profile_id", uint64(id)))
			out[id] = models.UnknownProfile(id)
		}
	}
	return out
}

// degraded records a field replaced by a placeholder.
func degraded(ctx context.Context, kind string, cause error, attrs ...any) {
	observability.DegradedJoins.WithLabelValues(kind).Inc()
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	middleware.Logger.WarnContext(ctx, kind+" unavailable, using placeholder", attrs...)
}
