// Package library implements the community library: authenticated search
// over published items, new submissions, and usage event tracking.
package library

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/config"
	"github.com/leblango/leblango-backend/internal/domain"
)

type itemRepo interface {
	SearchPublished(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
}

type submissionRepo interface {
	Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error)
}

type eventRepo interface {
	Create(ctx context.Context, e *domain.Event) (*domain.Event, error)
}

type queryLogRepo interface {
	Create(ctx context.Context, l *domain.QueryLog) (*domain.QueryLog, error)
}

// Service provides library operations for authenticated members.
type Service struct {
	items       itemRepo
	submissions submissionRepo
	events      eventRepo
	logs        queryLogRepo
	cfg         config.SearchConfig
	log         *slog.Logger
}

// NewService creates a new library service.
func NewService(log *slog.Logger, items itemRepo, submissions submissionRepo, events eventRepo, logs queryLogRepo, cfg config.SearchConfig) *Service {
	return &Service{
		items:       items,
		submissions: submissions,
		events:      events,
		logs:        logs,
		cfg:         cfg,
		log:         log.With("service", "library"),
	}
}
