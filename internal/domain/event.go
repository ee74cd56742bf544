package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a library usage event.
type EventType string

const (
	EventView     EventType = "view"
	EventDownload EventType = "download"
	EventComplete EventType = "complete"
)

// String returns the event type as stored in the database.
func (t EventType) String() string { return string(t) }

// Valid reports whether the event type is one of the known values.
func (t EventType) Valid() bool {
	switch t {
	case EventView, EventDownload, EventComplete:
		return true
	}
	return false
}

// Event records a single user interaction with a published library item.
// Events are never mutated; they are removed only when their item is deleted.
type Event struct {
	ID        uuid.UUID
	UserID    *uuid.UUID
	ItemID    uuid.UUID
	Type      EventType
	CreatedAt time.Time
}
