package importer

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leblango/leblango-backend/internal/domain"
)

// csvHeader is the required dictionary CSV column order.
var csvHeader = []string{"lemma", "gloss_ll", "gloss_en"}

// ImportDictionaryCSV imports dictionary entries from CSV with the header
// lemma,gloss_ll,gloss_en. Rows with a blank lemma or the wrong shape are
// counted as failures; the batch itself always succeeds.
func (s *Service) ImportDictionaryCSV(ctx context.Context, r io.Reader) (*domain.ImportJob, error) {
	p, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.NewValidationError("file", "empty or unreadable CSV")
	}
	if !validHeader(header) {
		return nil, domain.NewValidationError("file", "header must be lemma,gloss_ll,gloss_en")
	}

	job, err := s.newJob(ctx, "dictionary", p.UserID)
	if err != nil {
		return nil, err
	}

	l := &rowLog{}
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			l.failure(row, fmt.Sprintf("malformed CSV: %v", err))
			continue
		}
		if len(record) != len(csvHeader) {
			l.failure(row, fmt.Sprintf("expected %d columns, got %d", len(csvHeader), len(record)))
			continue
		}
		s.upsertEntry(ctx, l, row, entryRow{
			Lemma:   record[0],
			GlossLL: record[1],
			GlossEN: record[2],
		})
	}

	return s.finish(ctx, job, l)
}

// dictionaryPayload is the JSON import body: {"entries":[...]}.
type dictionaryPayload struct {
	Entries json.RawMessage `json:"entries"`
}

type entryRow struct {
	Lemma   string `json:"lemma"`
	GlossLL string `json:"gloss_ll"`
	GlossEN string `json:"gloss_en"`
}

// ImportDictionaryJSON imports dictionary entries from a JSON body of the
// form {"entries":[{lemma, gloss_ll, gloss_en}, ...]}. A body whose entries
// field is not a list is rejected before any row is processed.
func (s *Service) ImportDictionaryJSON(ctx context.Context, body []byte) (*domain.ImportJob, error) {
	p, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}

	var payload dictionaryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.NewValidationError("body", "must be a JSON object with an entries list")
	}

	rows, err := decodeRows(payload.Entries)
	if err != nil {
		return nil, domain.NewValidationError("entries", "must be a list")
	}

	job, err := s.newJob(ctx, "dictionary", p.UserID)
	if err != nil {
		return nil, err
	}

	l := &rowLog{}
	for i, raw := range rows {
		var row entryRow
		if err := json.Unmarshal(raw, &row); err != nil {
			l.failure(i+1, "not an object")
			continue
		}
		s.upsertEntry(ctx, l, i+1, row)
	}

	return s.finish(ctx, job, l)
}

func (s *Service) upsertEntry(ctx context.Context, l *rowLog, row int, in entryRow) {
	lemma := strings.TrimSpace(in.Lemma)
	if lemma == "" {
		l.failure(row, "blank lemma")
		return
	}

	_, err := s.entries.UpsertByLemma(ctx, &domain.Entry{
		Lemma:   lemma,
		GlossLL: strings.TrimSpace(in.GlossLL),
		GlossEN: strings.TrimSpace(in.GlossEN),
	})
	if err != nil {
		l.failure(row, fmt.Sprintf("upsert %q: %v", lemma, err))
		return
	}
	l.success()
}

func validHeader(header []string) bool {
	if len(header) != len(csvHeader) {
		return false
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), csvHeader[i]) {
			return false
		}
	}
	return true
}

// decodeRows splits a JSON array into its raw elements, failing when the
// value is absent or not an array. Per-element decoding happens row by row
// so a bad element costs one failed row, not the batch.
func decodeRows(raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || !strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("not a list")
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
