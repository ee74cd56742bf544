package dictionary

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

// SearchInput carries a dictionary search request. Limit, Offset and
// Similarity hold the raw client values; they are clamped, never rejected.
type SearchInput struct {
	Query      string
	Limit      int
	Offset     int
	Fuzzy      *bool
	Similarity *float64
	// RequestPath and ClientIP are recorded in the query log meta.
	RequestPath string
	ClientIP    string
}

// SearchResult is one page of matches. LemmaSim and GlossSim are zero in
// exact mode.
type SearchResult struct {
	Count      int
	SearchType string
	Entries    []domain.ScoredEntry
}

// Search runs a dictionary search. Fuzzy trigram matching is the default for
// a non-empty query; exact substring matching is used when the client asks
// for it, when the query is empty, or when fuzzy search is disabled.
func (s *Service) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	query := strings.TrimSpace(in.Query)
	limit := clampInt(in.Limit, 1, s.cfg.MaxPageSize, s.cfg.DefaultPageSize)
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	fuzzy := s.cfg.FuzzyEnabled && query != ""
	if in.Fuzzy != nil {
		fuzzy = fuzzy && *in.Fuzzy
	}

	result := &SearchResult{SearchType: SearchTypeExact}
	if fuzzy {
		threshold := s.cfg.SimilarityDefault
		if in.Similarity != nil {
			threshold = clampFloat(*in.Similarity, 0.1, 1.0)
		}
		scored, total, err := s.entries.SearchFuzzy(ctx, query, threshold, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("fuzzy search: %w", err)
		}
		result.SearchType = SearchTypeFuzzy
		result.Count = total
		result.Entries = scored
	} else {
		entries, total, err := s.entries.SearchExact(ctx, query, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("exact search: %w", err)
		}
		result.Count = total
		result.Entries = make([]domain.ScoredEntry, len(entries))
		for i, e := range entries {
			result.Entries[i] = domain.ScoredEntry{Entry: e}
		}
	}

	s.logQuery(ctx, query, result.Count, in.RequestPath, in.ClientIP)
	return result, nil
}

// EntryDetail is an entry together with its variant aliases.
type EntryDetail struct {
	Entry   *domain.Entry
	Aliases []string
}

// Entry returns one dictionary entry by ID with its variant aliases.
func (s *Service) Entry(ctx context.Context, id uuid.UUID) (*EntryDetail, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAliases(ctx, entry)
}

// EntryByLemma returns one dictionary entry by its exact lemma or variant
// alias.
func (s *Service) EntryByLemma(ctx context.Context, lemma string) (*EntryDetail, error) {
	lemma = strings.TrimSpace(lemma)
	if lemma == "" {
		return nil, domain.NewValidationError("lemma", "must not be empty")
	}
	entry, err := s.entries.GetByLemma(ctx, lemma)
	if err != nil {
		return nil, err
	}
	return s.withAliases(ctx, entry)
}

func (s *Service) withAliases(ctx context.Context, entry *domain.Entry) (*EntryDetail, error) {
	variants, err := s.entries.Variants(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	detail := &EntryDetail{Entry: entry}
	for _, v := range variants {
		detail.Aliases = append(detail.Aliases, v.Alias)
	}
	return detail, nil
}

// Autocomplete returns lemma suggestions for a prefix. No query log row is
// written for autocomplete traffic.
func (s *Service) Autocomplete(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	limit = clampInt(limit, 1, 25, s.cfg.AutocompleteLimit)
	return s.entries.Autocomplete(ctx, query, limit)
}

// logQuery appends the query log row for a search. Logging failures are
// reported but never fail the search itself.
func (s *Service) logQuery(ctx context.Context, query string, resultsCount int, path, ip string) {
	var userID *uuid.UUID
	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		userID = &id
	}

	_, err := s.logs.Create(ctx, &domain.QueryLog{
		Source:       "dictionary",
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

func clampInt(v, min, max, def int) int {
	if v == 0 {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
