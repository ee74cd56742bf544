package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

// Approve transitions a pending submission to approved and publishes a
// library item carrying the submission's fields verbatim. The transition is
// guarded by the pending precondition at the database level, so of two
// concurrent reviewers exactly one wins and the other receives a conflict.
func (s *Service) Approve(ctx context.Context, submissionID uuid.UUID) (*ReviewResult, error) {
	reviewer, err := s.requireModerator(ctx)
	if err != nil {
		return nil, err
	}

	var result ReviewResult
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("get submission: %w", err)
		}
		if sub.Status != domain.SubmissionPending {
			return domain.NewConflictError("Submission is already %s", sub.Status)
		}

		now := s.now().UTC()
		ok, err := s.submissions.MarkReviewed(ctx, sub.ID, domain.SubmissionApproved, reviewer.UserID, now, "")
		if err != nil {
			return fmt.Errorf("mark reviewed: %w", err)
		}
		if !ok {
			// Another reviewer finished between our read and the guarded
			// update. Re-read for the conflict message.
			return s.conflictWithCurrentStatus(ctx, sub.ID)
		}

		item, err := s.items.Create(ctx, &domain.Item{
			CategoryID:         sub.CategoryID,
			Title:              sub.Title,
			Description:        sub.Description,
			URL:                sub.URL,
			IsPublished:        true,
			SubmittedBy:        sub.SubmittedBy,
			SourceSubmissionID: &sub.ID,
		})
		if err != nil {
			return fmt.Errorf("publish item: %w", err)
		}

		reviewed := *sub
		reviewed.Status = domain.SubmissionApproved
		reviewed.ReviewedBy = &reviewer.UserID
		reviewed.ReviewedAt = &now
		result = ReviewResult{Submission: &reviewed, Item: item}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("submission approved",
		"submission_id", submissionID,
		"item_id", result.Item.ID,
		"reviewer_id", reviewer.UserID,
	)
	return &result, nil
}

// Reject transitions a pending submission to rejected. No library item is
// created. An empty reason is stored as an empty string.
func (s *Service) Reject(ctx context.Context, submissionID uuid.UUID, reason string) (*ReviewResult, error) {
	reviewer, err := s.requireModerator(ctx)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)

	var result ReviewResult
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.GetByID(ctx, submissionID)
		if err != nil {
			return fmt.Errorf("get submission: %w", err)
		}
		if sub.Status != domain.SubmissionPending {
			return domain.NewConflictError("Submission is already %s", sub.Status)
		}

		now := s.now().UTC()
		ok, err := s.submissions.MarkReviewed(ctx, sub.ID, domain.SubmissionRejected, reviewer.UserID, now, reason)
		if err != nil {
			return fmt.Errorf("mark reviewed: %w", err)
		}
		if !ok {
			return s.conflictWithCurrentStatus(ctx, sub.ID)
		}

		reviewed := *sub
		reviewed.Status = domain.SubmissionRejected
		reviewed.RejectionReason = reason
		reviewed.ReviewedBy = &reviewer.UserID
		reviewed.ReviewedAt = &now
		result = ReviewResult{Submission: &reviewed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("submission rejected",
		"submission_id", submissionID,
		"reviewer_id", reviewer.UserID,
	)
	return &result, nil
}

// ListPending returns the moderation queue, oldest first.
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]domain.Submission, int, error) {
	if _, err := s.requireModerator(ctx); err != nil {
		return nil, 0, err
	}
	return s.submissions.ListByStatus(ctx, domain.SubmissionPending, limit, offset)
}

// RemoveItem permanently deletes a library item and, via cascade, its
// tracked events. Managers only; the approval trail on the submission row
// is kept.
func (s *Service) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	p, ok := ctxutil.PrincipalFromCtx(ctx)
	if !ok {
		return fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}
	if !p.IsManager() {
		return fmt.Errorf("%w: manager access required", domain.ErrForbidden)
	}

	if err := s.items.Delete(ctx, itemID); err != nil {
		return err
	}

	s.log.Info("library item removed",
		"item_id", itemID,
		"removed_by", p.UserID,
	)
	return nil
}

func (s *Service) requireModerator(ctx context.Context) (ctxutil.Principal, error) {
	p, ok := ctxutil.PrincipalFromCtx(ctx)
	if !ok {
		return ctxutil.Principal{}, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}
	if !p.IsModerator() {
		return ctxutil.Principal{}, fmt.Errorf("%w: moderator access required", domain.ErrForbidden)
	}
	return p, nil
}

func (s *Service) conflictWithCurrentStatus(ctx context.Context, id uuid.UUID) error {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get submission after lost review race: %w", err)
	}
	return domain.NewConflictError("Submission is already %s", sub.Status)
}
