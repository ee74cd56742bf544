// Package event implements the library event repository using PostgreSQL.
// Events are append-only; cleanup happens only via the item cascade.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/leblango/leblango-backend/internal/adapter/postgres"
	"github.com/leblango/leblango-backend/internal/domain"
)

// Repo provides event persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Create appends one event row.
func (r *Repo) Create(ctx context.Context, e *domain.Event) (*domain.Event, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := q.Exec(ctx,
		`INSERT INTO library_events (id, user_id, item_id, event_type, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.UserID, e.ItemID, e.Type.String(), e.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "event", e.ID)
	}

	return e, nil
}

// CountsByType returns the number of events per event type across all items.
func (r *Repo) CountsByType(ctx context.Context) (map[domain.EventType]int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT event_type, COUNT(*) FROM library_events GROUP BY event_type`)
	if err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.EventType]int)
	for rows.Next() {
		var et string
		var n int
		if err := rows.Scan(&et, &n); err != nil {
			return nil, fmt.Errorf("scan event count: %w", err)
		}
		counts[domain.EventType(et)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count events by type: %w", err)
	}

	return counts, nil
}
