package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
)

// compile-time checks
var (
	_ repository.CategoryRepository = (*DB)(nil)
	_ repository.GenreRepository    = (*DB)(nil)
)

// Categories and genres share a table shape, so the implementations funnel
// through table-parameterized helpers. The table name is always a string
// literal at the call site — never caller input.

// CreateCategory inserts a category. Duplicate slug → conflict.
func (db *DB) CreateCategory(ctx context.Context, category *model.Category) error {
	return db.createSlugged(ctx, "categories", category.Slug, category.Name, &category.ID)
}

// GetCategoryBySlug retrieves a category by its unique slug.
func (db *DB) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	if err := db.getSlugged(ctx, "categories", "category", slug, &c.ID, &c.Name, &c.Slug); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCategories returns categories ordered by name descending.
func (db *DB) ListCategories(ctx context.Context, opts repository.ListOptions) ([]model.Category, error) {
	rows, err := db.listSlugged(ctx, "categories", opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// DeleteCategory removes a category by slug. Titles referencing it keep
// existing with a null category (ON DELETE SET NULL).
func (db *DB) DeleteCategory(ctx context.Context, slug string) error {
	return db.deleteSlugged(ctx, "categories", "category", slug)
}

// CreateGenre inserts a genre. Duplicate slug → conflict.
func (db *DB) CreateGenre(ctx context.Context, genre *model.Genre) error {
	return db.createSlugged(ctx, "genres", genre.Slug, genre.Name, &genre.ID)
}

// GetGenreBySlug retrieves a genre by its unique slug.
func (db *DB) GetGenreBySlug(ctx context.Context, slug string) (*model.Genre, error) {
	var g model.Genre
	if err := db.getSlugged(ctx, "genres", "genre", slug, &g.ID, &g.Name, &g.Slug); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGenres returns genres ordered by name descending.
func (db *DB) ListGenres(ctx context.Context, opts repository.ListOptions) ([]model.Genre, error) {
	rows, err := db.listSlugged(ctx, "genres", opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	genres := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Slug); err != nil {
			return nil, fmt.Errorf("sqlite: scanning genre row: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// DeleteGenre removes a genre by slug. Join-table rows for tagged titles are
// removed by cascade; the titles themselves are untouched.
func (db *DB) DeleteGenre(ctx context.Context, slug string) error {
	return db.deleteSlugged(ctx, "genres", "genre", slug)
}

// --- shared helpers ---------------------------------------------------------

func (db *DB) createSlugged(ctx context.Context, table, slug, name string, id *string) error {
	*id = xid.New().String()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO `+table+` (id, name, slug) VALUES (?, ?, ?)`,
		*id, name, slug,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict(fmt.Sprintf("slug %q already exists", slug))
		}
		return fmt.Errorf("sqlite: creating %s %s: %w", table, slug, err)
	}
	return nil
}

func (db *DB) getSlugged(ctx context.Context, table, resource, slug string, dest ...any) error {
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, slug FROM `+table+` WHERE slug = ?`, slug,
	).Scan(dest...)
	if err != nil {
		if errIsNoRows(err) {
			return apperror.NotFound(resource, slug)
		}
		return fmt.Errorf("sqlite: getting %s %s: %w", resource, slug, err)
	}
	return nil
}

func (db *DB) deleteSlugged(ctx context.Context, table, resource, slug string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("sqlite: deleting %s %s: %w", resource, slug, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound(resource, slug)
	}
	return nil
}

func (db *DB) listSlugged(ctx context.Context, table string, opts repository.ListOptions) (*sql.Rows, error) {
	limit, offset := clampList(opts.Limit, opts.Offset)

	query := `SELECT id, name, slug FROM ` + table
	args := []any{}
	if opts.Search != "" {
		query += ` WHERE name LIKE ?`
		args = append(args, "%"+opts.Search+"%")
	}
	query += ` ORDER BY name DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s: %w", table, err)
	}
	return rows, nil
}
