package analytics

import (
	"context"
	"fmt"

	"github.com/leblango/leblango-backend/internal/domain"
)

// QueryHealthSummary reports search quality over a trailing window of days:
// totals, the no-result rate, and the most frequent queries overall and among
// those that returned nothing.
func (s *Service) QueryHealthSummary(ctx context.Context, days, limit int) (*domain.QueryHealth, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}

	if days <= 0 {
		days = s.cfg.DefaultWindowDays
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	key := fmt.Sprintf("qh:summary:%d:%d", days, limit)
	return cached(ctx, s, key, func(ctx context.Context) (*domain.QueryHealth, error) {
		since := s.now().UTC().AddDate(0, 0, -days)

		total, noResults, err := s.logs.WindowStats(ctx, since)
		if err != nil {
			return nil, fmt.Errorf("window stats: %w", err)
		}

		top, err := s.logs.TopQueries(ctx, since, limit, false)
		if err != nil {
			return nil, fmt.Errorf("top queries: %w", err)
		}

		topNoResult, err := s.logs.TopQueries(ctx, since, limit, true)
		if err != nil {
			return nil, fmt.Errorf("top no-result queries: %w", err)
		}

		health := &domain.QueryHealth{
			WindowDays:         days,
			TotalSearches:      total,
			NoResultSearches:   noResults,
			TopQueries:         top,
			TopNoResultQueries: topNoResult,
		}
		if total > 0 {
			health.NoResultRate = float64(noResults) / float64(total)
		}
		return health, nil
	})
}

// LibraryOverview is the event-count breakdown for the library dashboard.
type LibraryOverview struct {
	Views       int `json:"views"`
	Downloads   int `json:"downloads"`
	Completes   int `json:"completes"`
	TotalEvents int `json:"total_events"`
}

// LibraryUsageOverview reports library usage event counts by type.
func (s *Service) LibraryUsageOverview(ctx context.Context) (*LibraryOverview, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}

	return cached(ctx, s, "analytics:library:overview", func(ctx context.Context) (*LibraryOverview, error) {
		counts, err := s.events.CountsByType(ctx)
		if err != nil {
			return nil, fmt.Errorf("event counts: %w", err)
		}

		out := &LibraryOverview{
			Views:     counts[domain.EventView],
			Downloads: counts[domain.EventDownload],
			Completes: counts[domain.EventComplete],
		}
		out.TotalEvents = out.Views + out.Downloads + out.Completes
		return out, nil
	})
}

// DictionaryOverview is the all-time dictionary search quality summary.
type DictionaryOverview struct {
	TotalSearches    int     `json:"total_searches"`
	NoResultSearches int     `json:"no_result_searches"`
	NoResultRate     float64 `json:"no_result_rate"`
}

// DictionaryUsageOverview reports all-time dictionary search totals and the
// share of searches that found nothing.
func (s *Service) DictionaryUsageOverview(ctx context.Context) (*DictionaryOverview, error) {
	if err := s.requireManager(ctx); err != nil {
		return nil, err
	}

	return cached(ctx, s, "analytics:dictionary:overview", func(ctx context.Context) (*DictionaryOverview, error) {
		total, noResults, err := s.logs.SourceStats(ctx, "dictionary")
		if err != nil {
			return nil, fmt.Errorf("source stats: %w", err)
		}

		out := &DictionaryOverview{
			TotalSearches:    total,
			NoResultSearches: noResults,
		}
		if total > 0 {
			out.NoResultRate = float64(noResults) / float64(total)
		}
		return out, nil
	})
}
