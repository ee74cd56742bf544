package library

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leblango/leblango-backend/internal/config"
	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

type itemRepoMock struct {
	SearchPublishedFunc func(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error)
	GetPublishedFunc    func(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	CategoryBySlugFunc  func(ctx context.Context, slug string) (*domain.Category, error)
}

func (m *itemRepoMock) SearchPublished(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error) {
	return m.SearchPublishedFunc(ctx, filter)
}

func (m *itemRepoMock) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return m.GetPublishedFunc(ctx, id)
}

func (m *itemRepoMock) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	return m.CategoryBySlugFunc(ctx, slug)
}

type submissionRepoMock struct {
	CreateFunc func(ctx context.Context, s *domain.Submission) (*domain.Submission, error)
}

func (m *submissionRepoMock) Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	return m.CreateFunc(ctx, s)
}

type eventRepoMock struct {
	CreateFunc func(ctx context.Context, e *domain.Event) (*domain.Event, error)
	calls      int
}

func (m *eventRepoMock) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	m.calls++
	return m.CreateFunc(ctx, e)
}

type queryLogRepoMock struct {
	CreateFunc func(ctx context.Context, l *domain.QueryLog) (*domain.QueryLog, error)
	calls      int
}

func (m *queryLogRepoMock) Create(ctx context.Context, l *domain.QueryLog) (*domain.QueryLog, error) {
	m.calls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, l)
	}
	return l, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCfg() config.SearchConfig {
	return config.SearchConfig{
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

func memberCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
		UserID: userID,
		Role:   "member",
	})
}

func newTestService(items *itemRepoMock, subs *submissionRepoMock, events *eventRepoMock, logs *queryLogRepoMock) *Service {
	return NewService(testLogger(), items, subs, events, logs, testCfg())
}

func TestSearch(t *testing.T) {
	t.Parallel()

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&itemRepoMock{}, &submissionRepoMock{}, &eventRepoMock{}, &queryLogRepoMock{})

		_, err := svc.Search(context.Background(), SearchInput{Query: "alphabet"})

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("writes one library query log row", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		items := &itemRepoMock{
			SearchPublishedFunc: func(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error) {
				assert.Equal(t, "alphabet", filter.Query)
				assert.Equal(t, "books", filter.CategorySlug)
				assert.Equal(t, 20, filter.Limit)
				return []domain.Item{{Title: "Alphabet chart"}}, 1, nil
			},
		}
		logs := &queryLogRepoMock{
			CreateFunc: func(ctx context.Context, l *domain.QueryLog) (*domain.QueryLog, error) {
				assert.Equal(t, "library", l.Source)
				assert.Equal(t, "alphabet", l.Query)
				assert.True(t, l.HasResults)
				assert.Equal(t, 1, l.ResultsCount)
				require.NotNil(t, l.UserID)
				assert.Equal(t, userID, *l.UserID)
				return l, nil
			},
		}
		svc := newTestService(items, &submissionRepoMock{}, &eventRepoMock{}, logs)

		got, err := svc.Search(memberCtx(userID), SearchInput{
			Query:        " alphabet ",
			CategorySlug: "books",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, got.Count)
		assert.Equal(t, 1, logs.calls)
	})

	t.Run("clamps pagination", func(t *testing.T) {
		t.Parallel()

		items := &itemRepoMock{
			SearchPublishedFunc: func(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error) {
				assert.Equal(t, 100, filter.Limit)
				assert.Equal(t, 0, filter.Offset)
				return nil, 0, nil
			},
		}
		svc := newTestService(items, &submissionRepoMock{}, &eventRepoMock{}, &queryLogRepoMock{})

		_, err := svc.Search(memberCtx(uuid.New()), SearchInput{Limit: 900, Offset: -4})

		require.NoError(t, err)
	})
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	t.Run("creates pending submission", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		categoryID := uuid.New()
		items := &itemRepoMock{
			CategoryBySlugFunc: func(ctx context.Context, slug string) (*domain.Category, error) {
				assert.Equal(t, "books", slug)
				return &domain.Category{ID: categoryID, Slug: "books"}, nil
			},
		}
		subs := &submissionRepoMock{
			CreateFunc: func(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
				assert.Equal(t, "Sora phrasebook", s.Title)
				assert.Equal(t, domain.SubmissionPending, s.Status)
				require.NotNil(t, s.CategoryID)
				assert.Equal(t, categoryID, *s.CategoryID)
				require.NotNil(t, s.SubmittedBy)
				assert.Equal(t, userID, *s.SubmittedBy)
				out := *s
				out.ID = uuid.New()
				return &out, nil
			},
		}
		svc := newTestService(items, subs, &eventRepoMock{}, &queryLogRepoMock{})

		got, err := svc.Submit(memberCtx(userID), SubmitInput{
			Title:        "  Sora phrasebook  ",
			URL:          "https://example.org/book.pdf",
			CategorySlug: "books",
		})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, got.ID)
	})

	t.Run("blank title is invalid", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&itemRepoMock{}, &submissionRepoMock{}, &eventRepoMock{}, &queryLogRepoMock{})

		_, err := svc.Submit(memberCtx(uuid.New()), SubmitInput{Title: "   "})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown category is invalid", func(t *testing.T) {
		t.Parallel()

		items := &itemRepoMock{
			CategoryBySlugFunc: func(ctx context.Context, slug string) (*domain.Category, error) {
				return nil, domain.ErrNotFound
			},
		}
		svc := newTestService(items, &submissionRepoMock{}, &eventRepoMock{}, &queryLogRepoMock{})

		_, err := svc.Submit(memberCtx(uuid.New()), SubmitInput{
			Title:        "Sora phrasebook",
			CategorySlug: "nope",
		})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("requires authentication", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&itemRepoMock{}, &submissionRepoMock{}, &eventRepoMock{}, &queryLogRepoMock{})

		_, err := svc.Submit(context.Background(), SubmitInput{Title: "Sora phrasebook"})

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestTrack(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()

	published := &itemRepoMock{
		GetPublishedFunc: func(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
			return &domain.Item{ID: id, IsPublished: true}, nil
		},
	}

	t.Run("records event", func(t *testing.T) {
		t.Parallel()

		userID := uuid.New()
		events := &eventRepoMock{
			CreateFunc: func(ctx context.Context, e *domain.Event) (*domain.Event, error) {
				assert.Equal(t, itemID, e.ItemID)
				assert.Equal(t, domain.EventDownload, e.Type)
				require.NotNil(t, e.UserID)
				assert.Equal(t, userID, *e.UserID)
				out := *e
				out.ID = uuid.New()
				return &out, nil
			},
		}
		svc := newTestService(published, &submissionRepoMock{}, events, &queryLogRepoMock{})

		got, err := svc.Track(memberCtx(userID), TrackInput{ItemID: itemID, EventType: domain.EventDownload})

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, got.ID)
	})

	t.Run("unknown event type is invalid", func(t *testing.T) {
		t.Parallel()

		events := &eventRepoMock{}
		svc := newTestService(published, &submissionRepoMock{}, events, &queryLogRepoMock{})

		_, err := svc.Track(memberCtx(uuid.New()), TrackInput{ItemID: itemID, EventType: "share"})

		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, events.calls)
	})

	t.Run("unpublished item is not found", func(t *testing.T) {
		t.Parallel()

		items := &itemRepoMock{
			GetPublishedFunc: func(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
				return nil, domain.ErrNotFound
			},
		}
		events := &eventRepoMock{}
		svc := newTestService(items, &submissionRepoMock{}, events, &queryLogRepoMock{})

		_, err := svc.Track(memberCtx(uuid.New()), TrackInput{ItemID: itemID, EventType: domain.EventView})

		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Zero(t, events.calls)
	})

	t.Run("nil item id is invalid", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(published, &submissionRepoMock{}, &eventRepoMock{}, &queryLogRepoMock{})

		_, err := svc.Track(memberCtx(uuid.New()), TrackInput{EventType: domain.EventView})

		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
