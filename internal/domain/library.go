package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus is the moderation state of a library submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// String returns the status as stored in the database.
func (s SubmissionStatus) String() string { return string(s) }

// Terminal reports whether the status permits no further transitions.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected
}

// Category groups library items for filtering.
type Category struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// Submission is a user-proposed library resource awaiting moderation.
//
// Invariant: ReviewedBy and ReviewedAt are both nil while Status is pending
// and both set once the status leaves pending. RejectionReason is empty
// unless Status is rejected.
type Submission struct {
	ID              uuid.UUID
	Title           string
	Description     string
	URL             string
	CategoryID      *uuid.UUID
	SubmittedBy     *uuid.UUID
	Status          SubmissionStatus
	RejectionReason string
	ReviewedBy      *uuid.UUID
	ReviewedAt      *time.Time
	CreatedAt       time.Time
}

// ItemFilter restricts a library catalog search. Zero values mean no
// restriction for Query and CategorySlug.
type ItemFilter struct {
	// Query performs a case-insensitive substring match on title and
	// description when non-empty.
	Query string

	// CategorySlug keeps only items in the category with this slug.
	CategorySlug string

	Limit  int
	Offset int
}

// Item is a published (or draft) library resource.
//
// Invariant: at most one Item references a given Submission as its source;
// SourceSubmissionID is nil for items created directly or by import.
type Item struct {
	ID                 uuid.UUID
	CategoryID         *uuid.UUID
	Title              string
	Description        string
	URL                string
	IsPublished        bool
	SubmittedBy        *uuid.UUID
	SourceSubmissionID *uuid.UUID
	CreatedAt          time.Time
}
