package library

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

// TrackInput carries one usage event to record.
type TrackInput struct {
	ItemID    uuid.UUID
	EventType domain.EventType
}

// Track appends a usage event for a published item. Events against missing
// or unpublished items are rejected with ErrNotFound so that clients cannot
// probe drafts.
func (s *Service) Track(ctx context.Context, in TrackInput) (*domain.Event, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}

	if in.ItemID == uuid.Nil {
		return nil, domain.NewValidationError("item_id", "must be a valid item id")
	}
	if !in.EventType.Valid() {
		return nil, domain.NewValidationError("event_type", "must be one of view, download, complete")
	}

	if _, err := s.items.GetPublished(ctx, in.ItemID); err != nil {
		return nil, err
	}

	event, err := s.events.Create(ctx, &domain.Event{
		UserID: &userID,
		ItemID: in.ItemID,
		Type:   in.EventType,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	return event, nil
}
