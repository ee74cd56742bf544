package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/internal/service/library"
)

// libraryService defines the minimal interface needed by LibraryHandler.
type libraryService interface {
	Search(ctx context.Context, in library.SearchInput) (*library.SearchResult, error)
	Item(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	Submit(ctx context.Context, in library.SubmitInput) (*domain.Submission, error)
	Track(ctx context.Context, in library.TrackInput) (*domain.Event, error)
}

// LibraryHandler serves the authenticated library endpoints.
type LibraryHandler struct {
	svc libraryService
	log *slog.Logger
}

// NewLibraryHandler creates a LibraryHandler.
func NewLibraryHandler(svc libraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{svc: svc, log: logger.With("handler", "library")}
}

type itemResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CategoryID  *string   `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type librarySearchResponse struct {
	Count   int            `json:"count"`
	Results []itemResponse `json:"results"`
}

// Search handles GET /api/library/search.
func (h *LibraryHandler) Search(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Search(r.Context(), library.SearchInput{
		Query:        r.URL.Query().Get("q"),
		CategorySlug: r.URL.Query().Get("category"),
		Limit:        queryInt(r, "limit"),
		Offset:       queryInt(r, "offset"),
		RequestPath:  r.URL.Path,
		ClientIP:     clientIP(r),
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := librarySearchResponse{
		Count:   result.Count,
		Results: make([]itemResponse, len(result.Items)),
	}
	for i, item := range result.Items {
		resp.Results[i] = toItemResponse(item)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Item handles GET /api/library/items/{id}.
func (h *LibraryHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	item, err := h.svc.Item(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

type submitRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
}

// Submit handles POST /api/library/submit.
func (h *LibraryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	sub, err := h.svc.Submit(r.Context(), library.SubmitInput{
		Title:        req.Title,
		Description:  req.Description,
		URL:          req.URL,
		CategorySlug: req.Category,
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     sub.ID.String(),
		"status": sub.Status.String(),
	})
}

type trackRequest struct {
	ItemID    string `json:"item_id"`
	EventType string `json:"event_type"`
}

// Track handles POST /api/library/track.
func (h *LibraryHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "item_id must be a valid UUID")
		return
	}

	event, err := h.svc.Track(r.Context(), library.TrackInput{
		ItemID:    itemID,
		EventType: domain.EventType(req.EventType),
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": event.ID.String()})
}

func toItemResponse(item domain.Item) itemResponse {
	resp := itemResponse{
		ID:          item.ID.String(),
		Title:       item.Title,
		Description: item.Description,
		URL:         item.URL,
		CreatedAt:   item.CreatedAt,
	}
	if item.CategoryID != nil {
		id := item.CategoryID.String()
		resp.CategoryID = &id
	}
	return resp
}
