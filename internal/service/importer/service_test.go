package importer

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

type entryRepoMock struct {
	UpsertByLemmaFunc func(ctx context.Context, entry *domain.Entry) (bool, error)
	lemmas            []string
}

func (m *entryRepoMock) UpsertByLemma(ctx context.Context, entry *domain.Entry) (bool, error) {
	m.lemmas = append(m.lemmas, entry.Lemma)
	if m.UpsertByLemmaFunc != nil {
		return m.UpsertByLemmaFunc(ctx, entry)
	}
	return true, nil
}

type itemRepoMock struct {
	UpsertByTitleFunc func(ctx context.Context, item *domain.Item) (bool, error)
	titles            []string
}

func (m *itemRepoMock) UpsertByTitle(ctx context.Context, item *domain.Item) (bool, error) {
	m.titles = append(m.titles, item.Title)
	if m.UpsertByTitleFunc != nil {
		return m.UpsertByTitleFunc(ctx, item)
	}
	return true, nil
}

type jobRepoMock struct {
	finalized *domain.ImportJob
}

func (m *jobRepoMock) Create(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error) {
	out := *job
	out.ID = uuid.New()
	return &out, nil
}

func (m *jobRepoMock) Finalize(ctx context.Context, job *domain.ImportJob) error {
	m.finalized = job
	return nil
}

func (m *jobRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	if m.finalized != nil && m.finalized.ID == id {
		return m.finalized, nil
	}
	return nil, domain.ErrNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staffCtx() context.Context {
	return ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
		UserID:  uuid.New(),
		Role:    "member",
		IsStaff: true,
	})
}

func TestImportDictionaryCSV(t *testing.T) {
	t.Parallel()

	t.Run("mixed rows are counted individually", func(t *testing.T) {
		t.Parallel()

		csv := strings.Join([]string{
			"lemma,gloss_ll,gloss_en",
			"apwoyo,apwoyo matek,thank you",
			",missing,lemma",
			"cam,cam,food",
			"short,row",
		}, "\n")

		entries := &entryRepoMock{}
		jobs := &jobRepoMock{}
		svc := NewService(testLogger(), entries, &itemRepoMock{}, jobs)

		job, err := svc.ImportDictionaryCSV(staffCtx(), strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 4, job.TotalRows)
		assert.Equal(t, 2, job.SuccessRows)
		assert.Equal(t, 2, job.FailedRows)
		assert.Equal(t, []string{"apwoyo", "cam"}, entries.lemmas)
		assert.Contains(t, job.Log, "row 2: blank lemma")
		assert.Contains(t, job.Log, "row 4:")
		require.NotNil(t, jobs.finalized)
		assert.Equal(t, "dictionary", jobs.finalized.JobType)
	})

	t.Run("wrong header is rejected up front", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &entryRepoMock{}, &itemRepoMock{}, &jobRepoMock{})

		_, err := svc.ImportDictionaryCSV(staffCtx(), strings.NewReader("word,meaning\napwoyo,thanks"))

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty file is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &entryRepoMock{}, &itemRepoMock{}, &jobRepoMock{})

		_, err := svc.ImportDictionaryCSV(staffCtx(), strings.NewReader(""))

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("upsert failure fails only that row", func(t *testing.T) {
		t.Parallel()

		entries := &entryRepoMock{
			UpsertByLemmaFunc: func(ctx context.Context, entry *domain.Entry) (bool, error) {
				if entry.Lemma == "cam" {
					return false, assert.AnError
				}
				return true, nil
			},
		}
		svc := NewService(testLogger(), entries, &itemRepoMock{}, &jobRepoMock{})

		job, err := svc.ImportDictionaryCSV(staffCtx(), strings.NewReader(
			"lemma,gloss_ll,gloss_en\napwoyo,apwoyo,thanks\ncam,cam,food\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, job.SuccessRows)
		assert.Equal(t, 1, job.FailedRows)
	})

	t.Run("non-staff is forbidden", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &entryRepoMock{}, &itemRepoMock{}, &jobRepoMock{})

		ctx := ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
			UserID: uuid.New(),
			Role:   "editor",
		})
		_, err := svc.ImportDictionaryCSV(ctx, strings.NewReader("lemma,gloss_ll,gloss_en\n"))

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestImportDictionaryJSON(t *testing.T) {
	t.Parallel()

	t.Run("imports entries list", func(t *testing.T) {
		t.Parallel()

		entries := &entryRepoMock{}
		svc := NewService(testLogger(), entries, &itemRepoMock{}, &jobRepoMock{})

		body := `{"entries":[
			{"lemma":"apwoyo","gloss_ll":"apwoyo matek","gloss_en":"thank you"},
			{"lemma":"","gloss_en":"blank"},
			"not-an-object"
		]}`
		job, err := svc.ImportDictionaryJSON(staffCtx(), []byte(body))

		require.NoError(t, err)
		assert.Equal(t, 3, job.TotalRows)
		assert.Equal(t, 1, job.SuccessRows)
		assert.Equal(t, 2, job.FailedRows)
		assert.Equal(t, []string{"apwoyo"}, entries.lemmas)
	})

	t.Run("non-list payload is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &entryRepoMock{}, &itemRepoMock{}, &jobRepoMock{})

		for _, body := range []string{
			`{"entries":{"lemma":"apwoyo"}}`,
			`{"entries":"apwoyo"}`,
			`{}`,
			`not json`,
		} {
			_, err := svc.ImportDictionaryJSON(staffCtx(), []byte(body))
			assert.ErrorIs(t, err, domain.ErrValidation, "body: %s", body)
		}
	})
}

func TestImportLibraryJSON(t *testing.T) {
	t.Parallel()

	t.Run("imports items and defaults is_published", func(t *testing.T) {
		t.Parallel()

		var published []bool
		items := &itemRepoMock{
			UpsertByTitleFunc: func(ctx context.Context, item *domain.Item) (bool, error) {
				published = append(published, item.IsPublished)
				return true, nil
			},
		}
		svc := NewService(testLogger(), &entryRepoMock{}, items, &jobRepoMock{})

		body := `{"items":[
			{"title":"Alphabet chart","url":"https://example.org/chart.pdf"},
			{"title":"Draft notes","is_published":false},
			{"title":"  "}
		]}`
		job, err := svc.ImportLibraryJSON(staffCtx(), []byte(body))

		require.NoError(t, err)
		assert.Equal(t, 3, job.TotalRows)
		assert.Equal(t, 2, job.SuccessRows)
		assert.Equal(t, 1, job.FailedRows)
		assert.Equal(t, []string{"Alphabet chart", "Draft notes"}, items.titles)
		assert.Equal(t, []bool{true, false}, published)
		assert.Equal(t, "library", job.JobType)
	})

	t.Run("non-list payload is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &entryRepoMock{}, &itemRepoMock{}, &jobRepoMock{})

		_, err := svc.ImportLibraryJSON(staffCtx(), []byte(`{"items":42}`))

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
