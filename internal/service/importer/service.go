// Package importer implements staff bulk imports of dictionary entries and
// library items. A batch never fails as a whole: bad rows are counted and
// logged in the import job while good rows are upserted by natural key.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/pkg/ctxutil"
)

type entryRepo interface {
	UpsertByLemma(ctx context.Context, entry *domain.Entry) (bool, error)
}

type itemRepo interface {
	UpsertByTitle(ctx context.Context, item *domain.Item) (bool, error)
}

type jobRepo interface {
	Create(ctx context.Context, job *domain.ImportJob) (*domain.ImportJob, error)
	Finalize(ctx context.Context, job *domain.ImportJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
}

// Service runs bulk imports.
type Service struct {
	entries entryRepo
	items   itemRepo
	jobs    jobRepo
	log     *slog.Logger
}

// NewService creates a new importer service.
func NewService(log *slog.Logger, entries entryRepo, items itemRepo, jobs jobRepo) *Service {
	return &Service{
		entries: entries,
		items:   items,
		jobs:    jobs,
		log:     log.With("service", "importer"),
	}
}

// Job returns one import job with its row accounting.
func (s *Service) Job(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	return s.jobs.GetByID(ctx, id)
}

func (s *Service) requireStaff(ctx context.Context) (ctxutil.Principal, error) {
	p, ok := ctxutil.PrincipalFromCtx(ctx)
	if !ok {
		return ctxutil.Principal{}, fmt.Errorf("%w: authentication required", domain.ErrUnauthorized)
	}
	if !p.IsStaff && p.Role != "admin" {
		return ctxutil.Principal{}, fmt.Errorf("%w: staff access required", domain.ErrForbidden)
	}
	return p, nil
}

// rowLog accumulates per-row failure lines for the job log.
type rowLog struct {
	b     strings.Builder
	total int
	ok    int
}

func (l *rowLog) success() {
	l.total++
	l.ok++
}

func (l *rowLog) failure(row int, reason string) {
	l.total++
	fmt.Fprintf(&l.b, "row %d: %s\n", row, reason)
}

func (l *rowLog) failed() int { return l.total - l.ok }

// finish persists the accounting on the job and returns it.
func (s *Service) finish(ctx context.Context, job *domain.ImportJob, l *rowLog) (*domain.ImportJob, error) {
	job.TotalRows = l.total
	job.SuccessRows = l.ok
	job.FailedRows = l.failed()
	job.Log = l.b.String()

	if err := s.jobs.Finalize(ctx, job); err != nil {
		return nil, fmt.Errorf("finalize import job: %w", err)
	}

	s.log.Info("import finished",
		"job_id", job.ID,
		"job_type", job.JobType,
		"total", job.TotalRows,
		"failed", job.FailedRows,
	)
	return job, nil
}

func (s *Service) newJob(ctx context.Context, jobType string, createdBy uuid.UUID) (*domain.ImportJob, error) {
	job, err := s.jobs.Create(ctx, &domain.ImportJob{
		JobType:   jobType,
		CreatedBy: &createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create import job: %w", err)
	}
	return job, nil
}
