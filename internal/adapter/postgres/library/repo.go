// Package library implements the catalog item and category repository using
// PostgreSQL. Published items are the only publicly visible rows; drafts
// exist solely for imports that request is_published = false.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/leblango/leblango-backend/internal/adapter/postgres"
	"github.com/leblango/leblango-backend/internal/domain"
)

// Repo provides library item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new library repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const itemColumns = "i.id, i.category_id, i.title, i.description, i.url, i.is_published, i.submitted_by, i.source_submission_id, i.created_at"

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// SearchPublished returns published items matching the filter, ordered by
// recency, plus the total count over the full filtered set.
func (r *Repo) SearchPublished(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	base := psql.Select(itemColumns).
		From("library_items i").
		Where(squirrel.Eq{"i.is_published": true})
	countQ := psql.Select("COUNT(*)").
		From("library_items i").
		Where(squirrel.Eq{"i.is_published": true})

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		cond := squirrel.Or{
			squirrel.ILike{"i.title": pattern},
			squirrel.ILike{"i.description": pattern},
		}
		base = base.Where(cond)
		countQ = countQ.Where(cond)
	}

	if filter.CategorySlug != "" {
		join := "library_categories c ON c.id = i.category_id"
		cond := squirrel.Eq{"c.slug": filter.CategorySlug}
		base = base.Join(join).Where(cond)
		countQ = countQ.Join(join).Where(cond)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count library_items: %w", err)
	}

	pageSQL, pageArgs, err := base.
		OrderBy("i.created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search query: %w", err)
	}

	rows, err := q.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search library_items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("search library_items: %w", err)
	}

	return items, total, nil
}

// GetPublished returns a published item by id.
// Returns domain.ErrNotFound for missing or unpublished items.
func (r *Repo) GetPublished(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM library_items i WHERE i.id = $1 AND i.is_published = true`, id)

	item, err := scanItem(row)
	if err != nil {
		return nil, postgres.MapError(err, "library_item", id)
	}

	return item, nil
}

// CategoryBySlug returns a category by its unique slug.
func (r *Repo) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var c domain.Category
	err := q.QueryRow(ctx,
		`SELECT id, name, slug FROM library_categories WHERE slug = $1`, slug,
	).Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, postgres.MapError(err, "library_category", slug)
	}

	return &c, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const createItemSQL = `
INSERT INTO library_items
    (id, category_id, title, description, url, is_published, submitted_by, source_submission_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + bareItemColumns

const bareItemColumns = "id, category_id, title, description, url, is_published, submitted_by, source_submission_id, created_at"

// Create inserts a new library item. A duplicate source_submission_id hits
// the unique index and surfaces as domain.ErrAlreadyExists, which is what
// turns a concurrent double-approve into a conflict instead of a double
// publication.
func (r *Repo) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	row := q.QueryRow(ctx, createItemSQL,
		item.ID, item.CategoryID, item.Title, item.Description, item.URL,
		item.IsPublished, item.SubmittedBy, item.SourceSubmissionID, item.CreatedAt)

	created, err := scanItem(row)
	if err != nil {
		return nil, postgres.MapError(err, "library_item", item.ID)
	}

	return created, nil
}

const upsertByTitleSQL = `
INSERT INTO library_items
    (id, title, description, url, is_published, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (title) DO UPDATE SET
    description  = CASE WHEN EXCLUDED.description <> '' THEN EXCLUDED.description ELSE library_items.description END,
    url          = CASE WHEN EXCLUDED.url <> '' THEN EXCLUDED.url ELSE library_items.url END,
    is_published = EXCLUDED.is_published
RETURNING (xmax = 0) AS inserted`

// UpsertByTitle inserts an item or updates an existing one by its natural
// key. Empty description/url values never overwrite existing ones. Returns
// true when a new item was created.
func (r *Repo) UpsertByTitle(ctx context.Context, item *domain.Item) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	var inserted bool
	err := q.QueryRow(ctx, upsertByTitleSQL,
		item.ID, item.Title, item.Description, item.URL, item.IsPublished, item.CreatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, postgres.MapError(err, "library_item", item.Title)
	}

	return inserted, nil
}

// Delete removes an item. Dependent events are removed by the ON DELETE
// CASCADE rule on library_events.item_id.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM library_items WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "library_item", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("library_item %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanItem(row pgx.Row) (*domain.Item, error) {
	var i domain.Item
	err := row.Scan(&i.ID, &i.CategoryID, &i.Title, &i.Description, &i.URL,
		&i.IsPublished, &i.SubmittedBy, &i.SourceSubmissionID, &i.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func scanItems(rows pgx.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		var i domain.Item
		err := rows.Scan(&i.ID, &i.CategoryID, &i.Title, &i.Description, &i.URL,
			&i.IsPublished, &i.SubmittedBy, &i.SourceSubmissionID, &i.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
