package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

// SearchInput carries a library catalog search request.
type SearchInput struct {
	Query        string
	CategorySlug string
	Limit        int
	Offset       int
	RequestPath  string
	ClientIP     string
}

// SearchResult is one page of published items.
type SearchResult struct {
	Count int
	Items []domain.Item
}

// Search returns published items matching the filter, newest first, and
// appends exactly one query log row for the call.
func (s *Service) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	if _, ok := ctxutil.PrincipalFromCtx(ctx); !ok {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}

	query := strings.TrimSpace(in.Query)
	limit := clampLimit(in.Limit, s.cfg.MaxPageSize, s.cfg.DefaultPageSize)
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.items.SearchPublished(ctx, domain.ItemFilter{
		Query:        query,
		CategorySlug: strings.TrimSpace(in.CategorySlug),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, fmt.Errorf("search library: %w", err)
	}

	s.logQuery(ctx, query, total, in.RequestPath, in.ClientIP)

	return &SearchResult{Count: total, Items: items}, nil
}

// Item returns one published library item.
func (s *Service) Item(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	if _, ok := ctxutil.PrincipalFromCtx(ctx); !ok {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}
	return s.items.GetPublished(ctx, id)
}

func (s *Service) logQuery(ctx context.Context, query string, resultsCount int, path, ip string) {
	var userID *uuid.UUID
	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		userID = &id
	}

	_, err := s.logs.Create(ctx, &domain.QueryLog{
		Source:       "library",
		Query:        query,
		HasResults:   resultsCount > 0,
		ResultsCount: resultsCount,
		UserID:       userID,
		Meta:         map[string]string{"path": path, "ip": ip},
	})
	if err != nil {
		s.log.Warn("query log write failed", "error", err, "query", query)
	}
}

func clampLimit(v, max, def int) int {
	if v == 0 {
		return def
	}
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
