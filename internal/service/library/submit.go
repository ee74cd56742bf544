package library

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

// SubmitInput carries a new library submission.
type SubmitInput struct {
	Title        string
	Description  string
	URL          string
	CategorySlug string
}

// Validate checks the input. Only the title is mandatory.
func (in *SubmitInput) Validate() error {
	var fields []domain.FieldError

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		fields = append(fields, domain.FieldError{Field: "title", Message: "must not be blank"})
	} else if len(in.Title) > 255 {
		fields = append(fields, domain.FieldError{Field: "title", Message: "must be at most 255 characters"})
	}

	in.URL = strings.TrimSpace(in.URL)
	if in.URL != "" {
		if u, err := url.Parse(in.URL); err != nil || u.Scheme == "" || u.Host == "" {
			fields = append(fields, domain.FieldError{Field: "url", Message: "must be an absolute URL"})
		}
	}

	in.Description = strings.TrimSpace(in.Description)
	in.CategorySlug = strings.TrimSpace(in.CategorySlug)

	if len(fields) > 0 {
		return domain.NewValidationErrors(fields)
	}
	return nil
}

// Submit creates a pending submission on behalf of the authenticated caller.
// An unknown category slug is a validation error.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Submission, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	var categoryID *uuid.UUID
	if in.CategorySlug != "" {
		cat, err := s.items.CategoryBySlug(ctx, in.CategorySlug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewValidationError("category", "unknown category")
			}
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		categoryID = &cat.ID
	}

	sub, err := s.submissions.Create(ctx, &domain.Submission{
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		CategoryID:  categoryID,
		SubmittedBy: &userID,
		Status:      domain.SubmissionPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	s.log.Info("submission created", "submission_id", sub.ID, "user_id", userID)
	return sub, nil
}
