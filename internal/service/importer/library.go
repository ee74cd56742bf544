package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leblango/leblango-backend/internal/domain"
)

// libraryPayload is the JSON import body: {"items":[...]}.
type libraryPayload struct {
	Items json.RawMessage `json:"items"`
}

type itemRow struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	IsPublished *bool  `json:"is_published"`
}

// ImportLibraryJSON imports library items from a JSON body of the form
// {"items":[{title, description, url, is_published}, ...]}. Items are
// upserted by title; is_published defaults to true.
func (s *Service) ImportLibraryJSON(ctx context.Context, body []byte) (*domain.ImportJob, error) {
	p, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	var payload libraryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.NewValidationError("body", "must be a JSON object with an items list")
	}

	rows, err := decodeRows(payload.Items)
	if err != nil {
		return nil, domain.NewValidationError("items", "must be a list")
	}

	job, err := s.newJob(ctx, "library", p.UserID)
	if err != nil {
		return nil, err
	}

	l := &rowLog{}
	for i, raw := range rows {
		var row itemRow
		if err := json.Unmarshal(raw, &row); err != nil {
			l.failure(i+1, "not an object")
			continue
		}
		s.upsertItem(ctx, l, i+1, row)
	}

	return s.finish(ctx, job, l)
}

func (s *Service) upsertItem(ctx context.Context, l *rowLog, row int, in itemRow) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		l.failure(row, "blank title")
		return
	}

	published := true
	if in.IsPublished != nil {
		published = *in.IsPublished
	}

	_, err := s.items.UpsertByTitle(ctx, &domain.Item{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		URL:         strings.TrimSpace(in.URL),
		IsPublished: published,
	})
	if err != nil {
		l.failure(row, fmt.Sprintf("upsert %q: %v", title, err))
		return
	}
	l.success()
}
