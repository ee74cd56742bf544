package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/internal/service/moderation"
)

// moderationService defines the minimal interface needed by ModerationHandler.
type moderationService interface {
	Approve(ctx context.Context, submissionID uuid.UUID) (*moderation.ReviewResult, error)
	Reject(ctx context.Context, submissionID uuid.UUID, reason string) (*moderation.ReviewResult, error)
	ListPending(ctx context.Context, limit, offset int) ([]domain.Submission, int, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
}

// ModerationHandler serves the submission review endpoints.
type ModerationHandler struct {
	svc moderationService
	log *slog.Logger
}

// NewModerationHandler creates a ModerationHandler.
func NewModerationHandler(svc moderationService, logger *slog.Logger) *ModerationHandler {
	return &ModerationHandler{svc: svc, log: logger.With("handler", "moderation")}
}

type submissionResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	URL             string     `json:"url"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	SubmittedBy     *string    `json:"submitted_by,omitempty"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type pendingListResponse struct {
	Count   int                  `json:"count"`
	Results []submissionResponse `json:"results"`
}

// ListPending handles GET /api/admin/submissions/pending.
func (h *ModerationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	subs, total, err := h.svc.ListPending(r.Context(), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := pendingListResponse{
		Count:   total,
		Results: make([]submissionResponse, len(subs)),
	}
	for i, sub := range subs {
		resp.Results[i] = toSubmissionResponse(sub)
	}

	writeJSON(w, http.StatusOK, resp)
}

type reviewResponse struct {
	Submission submissionResponse `json:"submission"`
	ItemID     *string            `json:"item_id,omitempty"`
}

// Approve handles POST /api/admin/submissions/{id}/approve.
func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	result, err := h.svc.Approve(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := reviewResponse{Submission: toSubmissionResponse(*result.Submission)}
	itemID := result.Item.ID.String()
	resp.ItemID = &itemID

	writeJSON(w, http.StatusOK, resp)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// Reject handles POST /api/admin/submissions/{id}/reject.
func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	// The body is optional; a rejection without a reason is fine, but a
	// body that is present yet malformed is rejected.
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	result, err := h.svc.Reject(r.Context(), id, req.Reason)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, reviewResponse{Submission: toSubmissionResponse(*result.Submission)})
}

// RemoveItem handles DELETE /api/admin/library/items/{id}.
func (h *ModerationHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	if err := h.svc.RemoveItem(r.Context(), id); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toSubmissionResponse(sub domain.Submission) submissionResponse {
	resp := submissionResponse{
		ID:              sub.ID.String(),
		Title:           sub.Title,
		Description:     sub.Description,
		URL:             sub.URL,
		Status:          sub.Status.String(),
		RejectionReason: sub.RejectionReason,
		ReviewedAt:      sub.ReviewedAt,
		CreatedAt:       sub.CreatedAt,
	}
	if sub.SubmittedBy != nil {
		id := sub.SubmittedBy.String()
		resp.SubmittedBy = &id
	}
	if sub.ReviewedBy != nil {
		id := sub.ReviewedBy.String()
		resp.ReviewedBy = &id
	}
	return resp
}
