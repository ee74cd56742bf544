// Package importjob implements the import job repository using PostgreSQL.
package importjob

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/leblango/leblango-backend/internal/adapter/postgres"
	"github.com/leblango/leblango-backend/internal/domain"
)

// Repo provides import job persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new import job repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create inserts a fresh job record with zeroed counters.
func (r *Repo) Create(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx,
		`INSERT INTO import_jobs
		     (id, job_type, created_by, total_rows, success_rows, failed_rows, log, created_at)
		 VALUES ($1, $2, $3, 0, 0, 0, '', $4)`,
		job.ID, job.JobType, job.CreatedBy, job.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "import_job", job.ID)
	}

	return job, nil
}

// Finalize writes the per-row counters and the textual log after a batch
// has been fully processed.
func (r *Repo) Finalize(ctx context.Context, job *domain.ImportJob) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx,
		`UPDATE import_jobs
		 SET total_rows = $2, success_rows = $3, failed_rows = $4, log = $5
		 WHERE id = $1`,
		job.ID, job.TotalRows, job.SuccessRows, job.FailedRows, job.Log)
	if err != nil {
		return postgres.MapError(err, "import_job", job.ID)
	}

	return nil
}

// GetByID returns a job by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var job domain.ImportJob
	err := q.QueryRow(ctx,
		`SELECT id, job_type, created_by, total_rows, success_rows, failed_rows, log, created_at
		 FROM import_jobs WHERE id = $1`, id,
	).Scan(&job.ID, &job.JobType, &job.CreatedBy, &job.TotalRows,
		&job.SuccessRows, &job.FailedRows, &job.Log, &job.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "import_job", id)
	}

	return &job, nil
}
