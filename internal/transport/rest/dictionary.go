package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/internal/service/dictionary"
)

// dictionaryService defines the minimal interface needed by DictionaryHandler.
type dictionaryService interface {
	Search(ctx context.Context, in dictionary.SearchInput) (*dictionary.SearchResult, error)
	Entry(ctx context.Context, id uuid.UUID) (*dictionary.EntryDetail, error)
	EntryByLemma(ctx context.Context, lemma string) (*dictionary.EntryDetail, error)
	Autocomplete(ctx context.Context, query string, limit int) ([]string, error)
}

// DictionaryHandler serves the public dictionary endpoints.
type DictionaryHandler struct {
	svc dictionaryService
	log *slog.Logger
}

// NewDictionaryHandler creates a DictionaryHandler.
func NewDictionaryHandler(svc dictionaryService, logger *slog.Logger) *DictionaryHandler {
	return &DictionaryHandler{svc: svc, log: logger.With("handler", "dictionary")}
}

type entryResponse struct {
	ID       string   `json:"id"`
	Lemma    string   `json:"lemma"`
	GlossLL  string   `json:"gloss_ll"`
	GlossEN  string   `json:"gloss_en"`
	LemmaSim *float64 `json:"lemma_similarity,omitempty"`
	GlossSim *float64 `json:"gloss_similarity,omitempty"`
}

type entryDetailResponse struct {
	entryResponse
	Aliases []string `json:"aliases"`
}

type searchResponse struct {
	Count      int             `json:"count"`
	Results    []entryResponse `json:"results"`
	SearchType string          `json:"search_type"`
}

// Search handles GET /api/public/v1/dictionary/search.
func (h *DictionaryHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Search(r.Context(), dictionary.SearchInput{
		Query:       r.URL.Query().Get("q"),
		Limit:       queryInt(r, "limit"),
		Offset:      queryInt(r, "offset"),
		Fuzzy:       queryBool(r, "fuzzy"),
		Similarity:  queryFloat(r, "similarity"),
		RequestPath: r.URL.Path,
		ClientIP:    clientIP(r),
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := searchResponse{
		Count:      result.Count,
		Results:    make([]entryResponse, len(result.Entries)),
		SearchType: result.SearchType,
	}
	fuzzy := result.SearchType == dictionary.SearchTypeFuzzy
	for i, e := range result.Entries {
		resp.Results[i] = toEntryResponse(e, fuzzy)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Entry handles GET /api/public/v1/dictionary/entry/{id}.
func (h *DictionaryHandler) Entry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	detail, err := h.svc.Entry(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := entryDetailResponse{
		entryResponse: toEntryResponse(domain.ScoredEntry{Entry: *detail.Entry}, false),
		Aliases:       detail.Aliases,
	}
	if resp.Aliases == nil {
		resp.Aliases = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// EntryByLemma handles GET /api/public/v1/dictionary/lemma/{lemma}.
func (h *DictionaryHandler) EntryByLemma(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.EntryByLemma(r.Context(), r.PathValue("lemma"))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := entryDetailResponse{
		entryResponse: toEntryResponse(domain.ScoredEntry{Entry: *detail.Entry}, false),
		Aliases:       detail.Aliases,
	}
	if resp.Aliases == nil {
		resp.Aliases = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Autocomplete handles GET /api/public/v1/dictionary/autocomplete.
func (h *DictionaryHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.svc.Autocomplete(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit"))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

func toEntryResponse(e domain.ScoredEntry, fuzzy bool) entryResponse {
	resp := entryResponse{
		ID:      e.ID.String(),
		Lemma:   e.Lemma,
		GlossLL: e.GlossLL,
		GlossEN: e.GlossEN,
	}
	if fuzzy {
		lemmaSim, glossSim := e.LemmaSim, e.GlossSim
		resp.LemmaSim = &lemmaSim
		resp.GlossSim = &glossSim
	}
	return resp
}
