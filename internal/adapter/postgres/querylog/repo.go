// Package querylog implements the append-only search query log repository
// using PostgreSQL, plus the aggregate reads behind the admin query-health
// and analytics dashboards.
package querylog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/leblango/leblango-backend/internal/adapter/postgres"
	"github.com/leblango/leblango-backend/internal/domain"
)

// Repo provides query log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new query log repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create appends one query log row.
func (r *Repo) Create(ctx context.Context, l *domain.QueryLog) (*domain.QueryLog, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	if l.Meta == nil {
		l.Meta = map[string]string{}
	}

	meta, err := json.Marshal(l.Meta)
	if err != nil {
		return nil, fmt.Errorf("marshal query log meta: %w", err)
	}

	_, err = q.Exec(ctx,
		`INSERT INTO search_query_logs
		     (id, source, query, has_results, results_count, user_id, meta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)`,
		l.ID, l.Source, l.Query, l.HasResults, l.ResultsCount, l.UserID, meta, l.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "query_log", l.ID)
	}

	return l, nil
}

// WindowStats returns the total and no-result search counts since the
// given time. A zero since counts all rows.
func (r *Repo) WindowStats(ctx context.Context, since time.Time) (total, noResults int, err error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	err = q.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT has_results)
		 FROM search_query_logs
		 WHERE created_at >= $1`, since,
	).Scan(&total, &noResults)
	if err != nil {
		return 0, 0, fmt.Errorf("query log window stats: %w", err)
	}

	return total, noResults, nil
}

// SourceStats returns the total and no-result search counts for one source.
func (r *Repo) SourceStats(ctx context.Context, source string) (total, noResults int, err error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	err = q.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT has_results)
		 FROM search_query_logs
		 WHERE source = $1`, source,
	).Scan(&total, &noResults)
	if err != nil {
		return 0, 0, fmt.Errorf("query log source stats: %w", err)
	}

	return total, noResults, nil
}

const topQueriesSQL = `
SELECT query, source, COUNT(*) AS times
FROM search_query_logs
WHERE created_at >= $1 %s
GROUP BY query, source
ORDER BY times DESC, query ASC
LIMIT $2`

// TopQueries returns the most frequent (query, source) buckets since the
// given time. When noResultsOnly is set, only searches that returned
// nothing are counted; those drive the dictionary backlog.
func (r *Repo) TopQueries(ctx context.Context, since time.Time, limit int, noResultsOnly bool) ([]domain.QueryCount, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	extra := ""
	if noResultsOnly {
		extra = "AND NOT has_results"
	}

	rows, err := q.Query(ctx, fmt.Sprintf(topQueriesSQL, extra), since, limit)
	if err != nil {
		return nil, fmt.Errorf("top queries: %w", err)
	}
	defer rows.Close()

	var result []domain.QueryCount
	for rows.Next() {
		var qc domain.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Source, &qc.Times); err != nil {
			return nil, fmt.Errorf("scan top query: %w", err)
		}
		result = append(result, qc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top queries: %w", err)
	}

	return result, nil
}
