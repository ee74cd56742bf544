// Package dictionary implements public dictionary search, entry lookup and
// autocomplete. Every search call appends exactly one query log row.
package dictionary

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/config"
	"github.com/leblango/leblango-backend/internal/domain"
)

type entryRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error)
	GetByLemma(ctx context.Context, lemma string) (*domain.Entry, error)
	Variants(ctx context.Context, entryID uuid.UUID) ([]domain.EntryVariant, error)
	SearchExact(ctx context.Context, query string, limit, offset int) ([]domain.Entry, int, error)
	SearchFuzzy(ctx context.Context, query string, threshold float64, limit, offset int) ([]domain.ScoredEntry, int, error)
	Autocomplete(ctx context.Context, query string, limit int) ([]string, error)
}

type queryLogRepo interface {
	Create(ctx context.Context, l *domain.QueryLog) (*domain.QueryLog, error)
}

// Service provides read access to the dictionary.
type Service struct {
	entries entryRepo
	logs    queryLogRepo
	cfg     config.SearchConfig
	log     *slog.Logger
}

// NewService creates a new dictionary service.
func NewService(log *slog.Logger, entries entryRepo, logs queryLogRepo, cfg config.SearchConfig) *Service {
	return &Service{
		entries: entries,
		logs:    logs,
		cfg:     cfg,
		log:     log.With("service", "dictionary"),
	}
}

const (
	// SearchTypeExact marks a substring-match search.
	SearchTypeExact = "exact"
	// SearchTypeFuzzy marks a trigram-similarity search.
	SearchTypeFuzzy = "fuzzy"
)
