// Package submission implements the library submission repository using
// PostgreSQL. The guarded status update is the persistence half of the
// moderation state machine: a terminal submission can never transition again.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/leblango/leblango-backend/internal/adapter/postgres"
	"github.com/leblango/leblango-backend/internal/domain"
)

// Repo provides submission persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new submission repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const submissionColumns = "id, title, description, url, category_id, submitted_by, status, rejection_reason, reviewed_by, reviewed_at, created_at"

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a submission by primary key.
// Returns domain.ErrNotFound if the submission does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM library_submissions WHERE id = $1`, id)

	s, err := scanSubmission(row)
	if err != nil {
		return nil, postgres.MapError(err, "submission", id)
	}

	return s, nil
}

// ListByStatus returns submissions in the given status, oldest first so the
// moderation queue is worked in arrival order, plus the total count for that
// status.
func (r *Repo) ListByStatus(ctx context.Context, status domain.SubmissionStatus, limit, offset int) ([]domain.Submission, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM library_submissions WHERE status = $1`, status.String(),
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	rows, err := q.Query(ctx,
		`SELECT `+submissionColumns+` FROM library_submissions
		 WHERE status = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3`,
		status.String(), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		s, err := scanSubmissionRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	return subs, total, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createSubmissionSQL = `
INSERT INTO library_submissions
    (id, title, description, url, category_id, submitted_by, status, rejection_reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, '', $8)
RETURNING ` + submissionColumns

// Create inserts a new submission; status must be pending.
func (r *Repo) Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	row := q.QueryRow(ctx, createSubmissionSQL,
		s.ID, s.Title, s.Description, s.URL, s.CategoryID, s.SubmittedBy,
		s.Status.String(), s.CreatedAt)

	created, err := scanSubmission(row)
	if err != nil {
		return nil, postgres.MapError(err, "submission", s.ID)
	}

	return created, nil
}

const markReviewedSQL = `
UPDATE library_submissions
SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5
WHERE id = $1 AND status = 'pending'`

// MarkReviewed transitions a pending submission to a terminal status,
// recording the reviewer and review time. The WHERE status = 'pending'
// guard makes the check-then-act atomic: the second of two concurrent
// reviewers matches zero rows, and false is returned.
func (r *Repo) MarkReviewed(ctx context.Context, id uuid.UUID, status domain.SubmissionStatus, reviewerID uuid.UUID, reviewedAt time.Time, rejectionReason string) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, markReviewedSQL,
		id, status.String(), reviewerID, reviewedAt, rejectionReason)
	if err != nil {
		return false, postgres.MapError(err, "submission", id)
	}

	return tag.RowsAffected() == 1, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	var status string
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.URL, &s.CategoryID,
		&s.SubmittedBy, &status, &s.RejectionReason, &s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.Status = domain.SubmissionStatus(status)
	return &s, nil
}

func scanSubmissionRows(rows pgx.Rows) (*domain.Submission, error) {
	return scanSubmission(rows)
}
