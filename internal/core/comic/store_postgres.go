// Copyright (c) 2026 ComicZone. All rights reserved.

package comic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comiczone/comiczone/internal/platform/apperr"
	"github.com/comiczone/comiczone/internal/platform/database/schema"
	"github.com/comiczone/comiczone/internal/platform/dberr"
	"github.com/comiczone/comiczone/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the comic Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// selectColumns is the canonical projection shared by every read query.
func selectColumns() string {
	t := schema.CoreComic
	return strings.Join([]string{
		t.ID, t.Title, t.Slug, t.Author, t.Status, t.Summary, t.Genres,
		t.CoverURL, t.Chapters, t.UploadedBy, t.IsApproved, t.CreatedAt, t.UpdatedAt,
	}, ", ")
}

// scanComic hydrates one entity from a row produced by selectColumns.
func scanComic(row pgx.Row) (*Comic, error) {
	comic := &Comic{}
	err := row.Scan(
		&comic.ID,
		&comic.Title,
		&comic.Slug,
		&comic.Author,
		&comic.Status,
		&comic.Summary,
		&comic.Genres,
		&comic.CoverURL,
		&comic.Chapters,
		&comic.UploadedBy,
		&comic.IsApproved,
		&comic.CreatedAt,
		&comic.UpdatedAt,
	)
	return comic, err
}

/*
List returns a filtered page of comics together with the unpaged total.

Description: Uses a COUNT(*) OVER() window so the page and the total arrive in
a single round trip. Results are newest first.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - page: pagination.Params

Returns:
  - []Comic: Hydrated entities
  - int: Total row count matching the filter
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter ListFilter, page pagination.Params) ([]Comic, int, error) {
	t := schema.CoreComic

	conditions := []string{fmt.Sprintf("%s IS NULL", t.DeletedAt)}
	var args []any

	if filter.ApprovedOnly {
		conditions = append(conditions, fmt.Sprintf("%s = TRUE", t.IsApproved))
	}
	if filter.Genre != "" {
		args = append(args, filter.Genre)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(%s)", len(args), t.Genres))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(%s ILIKE $%d OR %s ILIKE $%d)",
			t.Title, len(args), t.Author, len(args)))
	}
	if filter.UploadedBy != "" {
		args = append(args, filter.UploadedBy)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", t.UploadedBy, len(args)))
	}

	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total
		FROM %s
		WHERE %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d`,
		selectColumns(), t.Table, strings.Join(conditions, " AND "),
		t.CreatedAt, len(args)-1, len(args),
	)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_comic_repo_list_failed: %w", err)
	}
	defer rows.Close()

	var comics []Comic
	var total int
	for rows.Next() {
		comic := Comic{}
		err := rows.Scan(
			&comic.ID,
			&comic.Title,
			&comic.Slug,
			&comic.Author,
			&comic.Status,
			&comic.Summary,
			&comic.Genres,
			&comic.CoverURL,
			&comic.Chapters,
			&comic.UploadedBy,
			&comic.IsApproved,
			&comic.CreatedAt,
			&comic.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_comic_repo_scan_failed: %w", err)
		}
		comics = append(comics, comic)
	}

	return comics, total, rows.Err()
}

/*
FindByID returns the live comic with the given ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Comic: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comic, error) {
	return repository.findBy(context, schema.CoreComic.ID, id)
}

/*
FindBySlug returns the live comic with the given URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Comic: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Comic, error) {
	return repository.findBy(context, schema.CoreComic.Slug, slug)
}

func (repository *PostgresRepository) findBy(context context.Context, column, value string) (*Comic, error) {
	t := schema.CoreComic
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL`,
		selectColumns(), t.Table, column, t.DeletedAt,
	)

	comic, err := scanComic(repository.pool.QueryRow(context, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Comic not found")
		}
		return nil, fmt.Errorf("postgres_comic_repo_find_failed: %w", err)
	}

	return comic, nil
}

/*
Create persists a brand-new comic record.

Parameters:
  - context: context.Context
  - comic: *Comic

Returns:
  - error: Constraint violations or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, comic *Comic) error {
	t := schema.CoreComic
	query := fmt.Sprintf(`
		INSERT INTO %s (
			%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.Table,
		t.ID, t.Title, t.Slug, t.Author, t.Status, t.Summary, t.Genres,
		t.CoverURL, t.Chapters, t.UploadedBy, t.IsApproved, t.CreatedAt, t.UpdatedAt,
	)

	now := time.Now()
	comic.CreatedAt = now
	comic.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		comic.ID,
		comic.Title,
		comic.Slug,
		comic.Author,
		comic.Status,
		comic.Summary,
		comic.Genres,
		comic.CoverURL,
		comic.Chapters,
		comic.UploadedBy,
		comic.IsApproved,
		comic.CreatedAt,
		comic.UpdatedAt,
	)

	if err != nil {
		// A slug collision losing the race against another upload is a conflict.
		return dberr.Wrap(err, "postgres_comic_repo_create")
	}

	return nil
}

/*
Update persists mutable metadata for an existing comic.

Parameters:
  - context: context.Context
  - comic: *Comic

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, comic *Comic) error {
	t := schema.CoreComic
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1 AND %s IS NULL`,
		t.Table,
		t.Title, t.Author, t.Status, t.Summary, t.Genres, t.UpdatedAt,
		t.ID, t.DeletedAt,
	)

	comic.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(context, query,
		comic.ID,
		comic.Title,
		comic.Author,
		comic.Status,
		comic.Summary,
		comic.Genres,
		comic.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_comic_repo_update_failed: %w", err)
	}

	return nil
}

/*
AddChapters appends page URLs to the comic's chapter array atomically.

Parameters:
  - context: context.Context
  - id: string
  - pages: []string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) AddChapters(context context.Context, id string, pages []string) error {
	t := schema.CoreComic
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = %s || $2, %s = $3
		WHERE %s = $1 AND %s IS NULL`,
		t.Table,
		t.Chapters, t.Chapters, t.UpdatedAt,
		t.ID, t.DeletedAt,
	)

	_, err := repository.pool.Exec(context, query, id, pages, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_comic_repo_add_chapters_failed: %w", err)
	}

	return nil
}

/*
SetApproval flips the moderation flag on a comic.

Parameters:
  - context: context.Context
  - id: string
  - approved: bool

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) SetApproval(context context.Context, id string, approved bool) error {
	t := schema.CoreComic
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3
		WHERE %s = $1 AND %s IS NULL`,
		t.Table, t.IsApproved, t.UpdatedAt, t.ID, t.DeletedAt,
	)

	tag, err := repository.pool.Exec(context, query, id, approved, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_comic_repo_set_approval_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comic not found")
	}

	return nil
}

/*
SoftDelete flags a comic as logically removed.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	t := schema.CoreComic
	query := fmt.Sprintf("UPDATE %s SET %s = NOW() WHERE %s = $1", t.Table, t.DeletedAt, t.ID)

	_, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_comic_repo_soft_delete_failed: %w", err)
	}

	return nil
}
