// Package analytics aggregates query logs and library events into the admin
// dashboards. Aggregate reads are cached in Redis for a short TTL because
// every underlying table is append-only and slightly stale numbers are fine.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leblango/leblango-backend/internal/adapter/redis"
	"github.com/leblango/leblango-backend/internal/config"
	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

type queryLogRepo interface {
	WindowStats(ctx context.Context, since time.Time) (total, noResults int, err error)
	SourceStats(ctx context.Context, source string) (total, noResults int, err error)
	TopQueries(ctx context.Context, since time.Time, limit int, noResultsOnly bool) ([]domain.QueryCount, error)
}

type eventRepo interface {
	CountsByType(ctx context.Context) (map[domain.EventType]int, error)
}

type cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service serves admin analytics.
type Service struct {
	logs   queryLogRepo
	events eventRepo
	cache  cache
	cfg    config.AnalyticsConfig
	log    *slog.Logger
	now    func() time.Time
}

// NewService creates a new analytics service.
func NewService(log *slog.Logger, logs queryLogRepo, events eventRepo, cache cache, cfg config.AnalyticsConfig) *Service {
	return &Service{
		logs:   logs,
		events: events,
		cache:  cache,
		cfg:    cfg,
		log:    log.With("service", "analytics"),
		now:    time.Now,
	}
}

func (s *Service) requireManager(ctx context.Context) error {
	p, ok := ctxutil.PrincipalFromCtx(ctx)
	if !ok {
		return fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}
	if !p.IsManager() {
		return fmt.Errorf("%w: manager access required", domain.ErrForbidden)
	}
	return nil
}

// cached runs compute through the cache. Cache errors other than a miss are
// logged and treated as misses; a failed write never fails the read.
func cached[T any](ctx context.Context, s *Service, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	var out T

	err := s.cache.GetJSON(ctx, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.log.Warn("cache read failed", "key", key, "error", err)
	}

	out, err = compute(ctx)
	if err != nil {
		return out, err
	}

	if err := s.cache.SetJSON(ctx, key, out, s.cfg.CacheTTL); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
	}

	return out, nil
}
