// Package moderation implements the submission review workflow: approving
// a pending submission publishes exactly one library item, rejecting it
// records the reason. Both transitions are one-shot and race-safe.
package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
)

type submissionRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, int, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, reviewerID uuid.UUID, reviewedAt time.Time, rejectionReason string) (bool, error)
}

type itemRepo interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service reviews library submissions.
type Service struct {
	submissions submissionRepo
	items       itemRepo
	tx          txManager
	log         *slog.Logger
	now         func() time.Time
}

// NewService creates a new moderation service.
func NewService(log *slog.Logger, submissions submissionRepo, items itemRepo, tx txManager) *Service {
	return &Service{
		submissions: submissions,
		items:       items,
		tx:          tx,
		log:         log.With("service", "moderation"),
		now:         time.Now,
	}
}

// ReviewResult reports the outcome of an approve or reject.
type ReviewResult struct {
	Submission *domain.Submission
	// Item is the published library item; nil for rejections.
	Item *domain.Item
}
