// Package dictionary implements the dictionary entry repository using
// PostgreSQL. Fuzzy search relies on the pg_trgm extension's similarity()
// operator backed by GIN trigram indexes.
package dictionary

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

// Repo provides dictionary entry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dictionary repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const entryColumns = "id, lemma, gloss_ll, gloss_en, updated_at"

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an entry by primary key.
// Returns domain.ErrNotFound if the entry does not exist.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Entry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM dictionary_entries WHERE id = $1`, id)

	e, err := scanEntry(row)
	if err != nil {
		return nil, postgres.MapError(err, "dictionary_entry", id)
	}

	return e, nil
}

const byLemmaSQL = `
SELECT e.id, e.lemma, e.gloss_ll, e.gloss_en, e.updated_at
FROM dictionary_entries e
LEFT JOIN entry_variants v ON v.entry_id = e.id
WHERE e.lemma = $1 OR v.alias = $1
LIMIT 1`

// GetByLemma returns an entry by its unique lemma or by one of its variant
// aliases. Returns domain.ErrNotFound when neither matches.
func (r *Repo) GetByLemma(ctx context.Context, lemma string) (*domain.Entry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	row := q.QueryRow(ctx, byLemmaSQL, lemma)

	e, err := scanEntry(row)
	if err != nil {
		return nil, postgres.MapError(err, "dictionary_entry", lemma)
	}

	return e, nil
}

// Variants returns the alternate spellings registered for an entry.
func (r *Repo) Variants(ctx context.Context, entryID uuid.UUID) ([]domain.EntryVariant, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx,
		`SELECT id, entry_id, alias FROM entry_variants WHERE entry_id = $1 ORDER BY alias ASC`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list entry_variants: %w", err)
	}
	defer rows.Close()

	var variants []domain.EntryVariant
	for rows.Next() {
		var v domain.EntryVariant
		if err := rows.Scan(&v.ID, &v.EntryID, &v.Alias); err != nil {
			return nil, fmt.Errorf("scan entry_variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entry_variants: %w", err)
	}

	return variants, nil
}

// SearchExact performs a case-insensitive substring match across lemma and
// both gloss fields, ordered alphabetically by lemma. An empty query matches
// all entries. Returns the page and the total count over the full filtered set.
func (r *Repo) SearchExact(ctx context.Context, query string, limit, offset int) ([]domain.Entry, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	base := psql.Select(entryColumns).From("dictionary_entries")
	countQ := psql.Select("COUNT(*)").From("dictionary_entries")

	if query != "" {
		pattern := "%" + query + "%"
		cond := squirrel.Or{
			squirrel.ILike{"lemma": pattern},
			squirrel.ILike{"gloss_ll": pattern},
			squirrel.ILike{"gloss_en": pattern},
		}
		base = base.Where(cond)
		countQ = countQ.Where(cond)
	}

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count dictionary_entries: %w", err)
	}

	pageSQL, pageArgs, err := base.
		OrderBy("lemma ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build search query: %w", err)
	}

	rows, err := q.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search dictionary_entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("search dictionary_entries: %w", err)
	}

	return entries, total, nil
}

const fuzzySearchSQL = `
SELECT id, lemma, gloss_ll, gloss_en, updated_at,
       similarity(lemma, $1) AS lemma_sim,
       GREATEST(similarity(gloss_ll, $1), similarity(gloss_en, $1)) AS gloss_sim
FROM dictionary_entries
WHERE GREATEST(
        similarity(lemma, $1),
        similarity(gloss_ll, $1),
        similarity(gloss_en, $1)
      ) >= $2
ORDER BY lemma_sim DESC, gloss_sim DESC, lemma ASC
LIMIT $3 OFFSET $4`

const fuzzyCountSQL = `
SELECT COUNT(*)
FROM dictionary_entries
WHERE GREATEST(
        similarity(lemma, $1),
        similarity(gloss_ll, $1),
        similarity(gloss_en, $1)
      ) >= $2`

// SearchFuzzy performs trigram-similarity search across lemma and both gloss
// fields, keeping rows whose best score reaches the threshold, ordered by
// lemma similarity then gloss similarity, both descending.
func (r *Repo) SearchFuzzy(ctx context.Context, query string, threshold float64, limit, offset int) ([]domain.ScoredEntry, int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, fuzzyCountSQL, query, threshold).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count fuzzy dictionary_entries: %w", err)
	}

	rows, err := q.Query(ctx, fuzzySearchSQL, query, threshold, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("fuzzy search dictionary_entries: %w", err)
	}
	defer rows.Close()

	var result []domain.ScoredEntry
	for rows.Next() {
		var s domain.ScoredEntry
		if err := rows.Scan(&s.ID, &s.Lemma, &s.GlossLL, &s.GlossEN, &s.UpdatedAt, &s.LemmaSim, &s.GlossSim); err != nil {
			return nil, 0, fmt.Errorf("scan fuzzy row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("fuzzy search dictionary_entries: %w", err)
	}

	return result, total, nil
}

const autocompleteSQL = `
SELECT term FROM (
    SELECT lemma AS term,
           (lemma ILIKE $1 || '%') AS is_prefix,
           similarity(lemma, $1) AS sim
    FROM dictionary_entries
    WHERE lemma ILIKE $1 || '%' OR similarity(lemma, $1) >= 0.3
    UNION
    SELECT alias AS term,
           (alias ILIKE $1 || '%') AS is_prefix,
           similarity(alias, $1) AS sim
    FROM entry_variants
    WHERE alias ILIKE $1 || '%' OR similarity(alias, $1) >= 0.3
) suggestions
ORDER BY is_prefix DESC, sim DESC, term ASC
LIMIT $2`

// Autocomplete returns ranked suggestions for a partial query, drawn from
// both lemmas and variant aliases. Prefix matches rank above trigram matches.
func (r *Repo) Autocomplete(ctx context.Context, query string, limit int) ([]string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, autocompleteSQL, query, limit)
	if err != nil {
		return nil, fmt.Errorf("autocomplete dictionary_entries: %w", err)
	}
	defer rows.Close()

	var lemmas []string
	for rows.Next() {
		var lemma string
		if err := rows.Scan(&lemma); err != nil {
			return nil, fmt.Errorf("scan autocomplete row: %w", err)
		}
		lemmas = append(lemmas, lemma)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("autocomplete dictionary_entries: %w", err)
	}

	return lemmas, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const upsertByLemmaSQL = `
INSERT INTO dictionary_entries (id, lemma, gloss_ll, gloss_en, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (lemma) DO UPDATE SET
    gloss_ll   = CASE WHEN EXCLUDED.gloss_ll <> '' THEN EXCLUDED.gloss_ll ELSE dictionary_entries.gloss_ll END,
    gloss_en   = CASE WHEN EXCLUDED.gloss_en <> '' THEN EXCLUDED.gloss_en ELSE dictionary_entries.gloss_en END,
    updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0) AS inserted`

// UpsertByLemma inserts an entry or updates an existing one by its natural
// key. Empty gloss values never overwrite existing ones. Returns true when a
// new entry was created.
func (r *Repo) UpsertByLemma(ctx context.Context, entry *domain.Entry) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	var inserted bool
	err := q.QueryRow(ctx, upsertByLemmaSQL,
		entry.ID, entry.Lemma, entry.GlossLL, entry.GlossEN, entry.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, postgres.MapError(err, "dictionary_entry", entry.Lemma)
	}

	return inserted, nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var e domain.Entry
	if err := row.Scan(&e.ID, &e.Lemma, &e.GlossLL, &e.GlossEN, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntries(rows pgx.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		if err := rows.Scan(&e.ID, &e.Lemma, &e.GlossLL, &e.GlossEN, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
