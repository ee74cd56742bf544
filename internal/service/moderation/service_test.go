package moderation

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

type submissionRepoMock struct {
	GetByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	ListByStatusFunc func(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, int, error)
	MarkReviewedFunc func(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, reviewerID uuid.UUID, reviewedAt time.Time, rejectionReason string) (bool, error)
}

func (m *submissionRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *submissionRepoMock) ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, int, error) {
	return m.ListByStatusFunc(ctx, status, limit, offset)
}

func (m *submissionRepoMock) MarkReviewed(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, reviewerID uuid.UUID, reviewedAt time.Time, rejectionReason string) (bool, error) {
	return m.MarkReviewedFunc(ctx, id, status, reviewerID, reviewedAt, rejectionReason)
}

type itemRepoMock struct {
	CreateFunc func(ctx context.Context, item *domain.Item) (*domain.Item, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
	calls      int
}

func (m *itemRepoMock) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	m.calls++
	return m.CreateFunc(ctx, item)
}

func (m *itemRepoMock) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, id)
}

// txManagerMock runs the closure directly; transactional behaviour is
// covered by the repo layer.
type txManagerMock struct{}

func (txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func moderatorCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
		UserID: userID,
		Role:   "editor",
	})
}

func pendingSubmission(id uuid.UUID) *domain.Submission {
	submitter := uuid.New()
	category := uuid.New()
	return &domain.Submission{
		ID:          id,
		Title:       "Sora phrasebook",
		Description: "Audio phrasebook for beginners",
		URL:         "https://example.org/phrasebook.pdf",
		CategoryID:  &category,
		SubmittedBy: &submitter,
		Status:      domain.SubmissionPending,
		CreatedAt:   time.Now().Add(-time.Hour),
	}
}

func TestApprove(t *testing.T) {
	t.Parallel()

	t.Run("publishes item with submission fields", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		reviewerID := uuid.New()
		sub := pendingSubmission(subID)

		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				assert.Equal(t, subID, id)
				return sub, nil
			},
			MarkReviewedFunc: func(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, rid uuid.UUID, at time.Time, reason string) (bool, error) {
				assert.Equal(t, domain.SubmissionApproved, status)
				assert.Equal(t, reviewerID, rid)
				assert.Empty(t, reason)
				return true, nil
			},
		}
		items := &itemRepoMock{
			CreateFunc: func(ctx context.Context, item *domain.Item) (*domain.Item, error) {
				assert.Equal(t, sub.Title, item.Title)
				assert.Equal(t, sub.Description, item.Description)
				assert.Equal(t, sub.URL, item.URL)
				assert.Equal(t, sub.CategoryID, item.CategoryID)
				assert.Equal(t, sub.SubmittedBy, item.SubmittedBy)
				assert.True(t, item.IsPublished)
				require.NotNil(t, item.SourceSubmissionID)
				assert.Equal(t, subID, *item.SourceSubmissionID)
				out := *item
				out.ID = uuid.New()
				return &out, nil
			},
		}
		svc := NewService(testLogger(), submissions, items, txManagerMock{})

		got, err := svc.Approve(moderatorCtx(reviewerID), subID)

		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionApproved, got.Submission.Status)
		require.NotNil(t, got.Submission.ReviewedBy)
		assert.Equal(t, reviewerID, *got.Submission.ReviewedBy)
		require.NotNil(t, got.Item)
		assert.NotEqual(t, uuid.Nil, got.Item.ID)
	})

	t.Run("already approved is a conflict", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		sub := pendingSubmission(subID)
		sub.Status = domain.SubmissionApproved

		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				return sub, nil
			},
		}
		items := &itemRepoMock{}
		svc := NewService(testLogger(), submissions, items, txManagerMock{})

		_, err := svc.Approve(moderatorCtx(uuid.New()), subID)

		require.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "Submission is already approved")
		assert.Zero(t, items.calls)
	})

	t.Run("lost race reports the winner's status", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		reads := 0
		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				reads++
				sub := pendingSubmission(subID)
				if reads > 1 {
					// The concurrent reviewer rejected it first.
					sub.Status = domain.SubmissionRejected
				}
				return sub, nil
			},
			MarkReviewedFunc: func(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, rid uuid.UUID, at time.Time, reason string) (bool, error) {
				return false, nil
			},
		}
		items := &itemRepoMock{}
		svc := NewService(testLogger(), submissions, items, txManagerMock{})

		_, err := svc.Approve(moderatorCtx(uuid.New()), subID)

		require.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "Submission is already rejected")
		assert.Zero(t, items.calls)
	})

	t.Run("missing submission", func(t *testing.T) {
		t.Parallel()

		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				return nil, domain.ErrNotFound
			},
		}
		svc := NewService(testLogger(), submissions, &itemRepoMock{}, txManagerMock{})

		_, err := svc.Approve(moderatorCtx(uuid.New()), uuid.New())

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &submissionRepoMock{}, &itemRepoMock{}, txManagerMock{})

		_, err := svc.Approve(context.Background(), uuid.New())

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("member role is forbidden", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &submissionRepoMock{}, &itemRepoMock{}, txManagerMock{})

		ctx := ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
			UserID: uuid.New(),
			Role:   "member",
		})
		_, err := svc.Approve(ctx, uuid.New())

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestReject(t *testing.T) {
	t.Parallel()

	t.Run("stores trimmed reason and creates no item", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		reviewerID := uuid.New()

		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				return pendingSubmission(subID), nil
			},
			MarkReviewedFunc: func(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, rid uuid.UUID, at time.Time, reason string) (bool, error) {
				assert.Equal(t, domain.SubmissionRejected, status)
				assert.Equal(t, "dead link", reason)
				return true, nil
			},
		}
		items := &itemRepoMock{}
		svc := NewService(testLogger(), submissions, items, txManagerMock{})

		got, err := svc.Reject(moderatorCtx(reviewerID), subID, "  dead link  ")

		require.NoError(t, err)
		assert.Equal(t, domain.SubmissionRejected, got.Submission.Status)
		assert.Equal(t, "dead link", got.Submission.RejectionReason)
		assert.Nil(t, got.Item)
		assert.Zero(t, items.calls)
	})

	t.Run("empty reason is allowed", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				return pendingSubmission(subID), nil
			},
			MarkReviewedFunc: func(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, rid uuid.UUID, at time.Time, reason string) (bool, error) {
				assert.Empty(t, reason)
				return true, nil
			},
		}
		svc := NewService(testLogger(), submissions, &itemRepoMock{}, txManagerMock{})

		got, err := svc.Reject(moderatorCtx(uuid.New()), subID, "")

		require.NoError(t, err)
		assert.Empty(t, got.Submission.RejectionReason)
	})

	t.Run("already rejected is a conflict", func(t *testing.T) {
		t.Parallel()

		subID := uuid.New()
		sub := pendingSubmission(subID)
		sub.Status = domain.SubmissionRejected

		submissions := &submissionRepoMock{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
				return sub, nil
			},
		}
		svc := NewService(testLogger(), submissions, &itemRepoMock{}, txManagerMock{})

		_, err := svc.Reject(moderatorCtx(uuid.New()), subID, "again")

		require.ErrorIs(t, err, domain.ErrConflict)
		assert.EqualError(t, err, "Submission is already rejected")
	})
}

func TestListPending(t *testing.T) {
	t.Parallel()

	submissions := &submissionRepoMock{
		ListByStatusFunc: func(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, int, error) {
			assert.Equal(t, domain.SubmissionPending, status)
			assert.Equal(t, 20, limit)
			return []domain.Submission{*pendingSubmission(uuid.New())}, 1, nil
		},
	}
	svc := NewService(testLogger(), submissions, &itemRepoMock{}, txManagerMock{})

	subs, total, err := svc.ListPending(moderatorCtx(uuid.New()), 20, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, subs, 1)
}

func TestListPending_ArrivalOrder(t *testing.T) {
	t.Parallel()

	older := pendingSubmission(uuid.New())
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	newer := pendingSubmission(uuid.New())
	newer.CreatedAt = time.Now().Add(-time.Hour)

	submissions := &submissionRepoMock{
		ListByStatusFunc: func(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, int, error) {
			return []domain.Submission{*older, *newer}, 2, nil
		},
	}
	svc := NewService(testLogger(), submissions, &itemRepoMock{}, txManagerMock{})

	subs, _, err := svc.ListPending(moderatorCtx(uuid.New()), 20, 0)

	require.NoError(t, err)
	require.Len(t, subs, 2)
	// The queue is worked oldest first; the repository's order must
	// survive untouched.
	assert.Equal(t, older.ID, subs[0].ID)
	assert.Equal(t, newer.ID, subs[1].ID)
	assert.True(t, subs[0].CreatedAt.Before(subs[1].CreatedAt))
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	t.Run("manager deletes item", func(t *testing.T) {
		t.Parallel()

		itemID := uuid.New()
		items := &itemRepoMock{
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				assert.Equal(t, itemID, id)
				return nil
			},
		}
		svc := NewService(testLogger(), &submissionRepoMock{}, items, txManagerMock{})

		ctx := ctxutil.WithPrincipal(context.Background(), ctxutil.Principal{
			UserID: uuid.New(),
			Role:   "manager",
		})

		require.NoError(t, svc.RemoveItem(ctx, itemID))
	})

	t.Run("editor is forbidden", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &submissionRepoMock{}, &itemRepoMock{}, txManagerMock{})

		err := svc.RemoveItem(moderatorCtx(uuid.New()), uuid.New())

		require.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testLogger(), &submissionRepoMock{}, &itemRepoMock{}, txManagerMock{})

		err := svc.RemoveItem(context.Background(), uuid.New())

		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
