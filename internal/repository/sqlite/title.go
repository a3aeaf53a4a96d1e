package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
)

// compile-time check that *DB implements repository.TitleRepository
var _ repository.TitleRepository = (*DB)(nil)

// titleSelect is the read projection: the title row, its (possibly null)
// category, and the rating aggregate. The rating is AVG over the title's
// current review scores — NULL, not zero, when the title has no reviews.
const titleSelect = `
	SELECT t.id, t.name, t.year, t.description,
	       c.id, c.name, c.slug,
	       (SELECT AVG(score) FROM reviews r WHERE r.title_id = t.id) AS rating
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

// CreateTitle inserts a title with its category reference and genre set.
// The caller (the service) has already resolved slugs to model values, so
// Category/Genres carry valid IDs here.
func (db *DB) CreateTitle(ctx context.Context, title *model.Title) error {
	title.ID = xid.New().String()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID any
	if title.Category != nil {
		categoryID = title.Category.ID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO titles (id, name, year, description, category_id)
		 VALUES (?, ?, ?, ?, ?)`,
		title.ID, title.Name, title.Year, title.Description, categoryID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating title %s: %w", title.Name, err)
	}

	if err := insertTitleGenres(ctx, tx, title.ID, title.Genres); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing title create: %w", err)
	}
	return nil
}

// GetTitle retrieves one title with category, genres, and rating.
func (db *DB) GetTitle(ctx context.Context, id string) (*model.Title, error) {
	row := db.conn.QueryRowContext(ctx, titleSelect+` WHERE t.id = ?`, id)
	title, err := scanTitle(row)
	if err != nil {
		if errIsNoRows(err) {
			return nil, apperror.NotFound("title", id)
		}
		return nil, fmt.Errorf("sqlite: getting title %s: %w", id, err)
	}

	if err := db.attachGenres(ctx, []*model.Title{title}); err != nil {
		return nil, err
	}
	return title, nil
}

// ListTitles returns titles matching the filter, ordered by name descending.
func (db *DB) ListTitles(ctx context.Context, filter repository.TitleFilter) ([]model.Title, error) {
	limit, offset := clampList(filter.Limit, filter.Offset)

	var conds []string
	var args []any
	if filter.Category != "" {
		conds = append(conds, `c.slug = ?`)
		args = append(args, filter.Category)
	}
	if filter.Genre != "" {
		conds = append(conds, `t.id IN (
			SELECT tg.title_id FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id WHERE g.slug = ?)`)
		args = append(args, filter.Genre)
	}
	if filter.Name != "" {
		conds = append(conds, `t.name LIKE ?`)
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		conds = append(conds, `t.year = ?`)
		args = append(args, *filter.Year)
	}

	query := titleSelect
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY t.name DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing titles: %w", err)
	}
	defer rows.Close()

	var titles []*model.Title
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning title row: %w", err)
		}
		titles = append(titles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating titles: %w", err)
	}

	if err := db.attachGenres(ctx, titles); err != nil {
		return nil, err
	}

	result := make([]model.Title, 0, len(titles))
	for _, t := range titles {
		result = append(result, *t)
	}
	return result, nil
}

// UpdateTitle saves the title fields and replaces its genre set.
func (db *DB) UpdateTitle(ctx context.Context, title *model.Title) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var categoryID any
	if title.Category != nil {
		categoryID = title.Category.ID
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE titles SET name = ?, year = ?, description = ?, category_id = ?
		 WHERE id = ?`,
		title.Name, title.Year, title.Description, categoryID, title.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating title %s: %w", title.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("title", title.ID)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM title_genres WHERE title_id = ?`, title.ID); err != nil {
		return fmt.Errorf("sqlite: clearing title genres: %w", err)
	}
	if err := insertTitleGenres(ctx, tx, title.ID, title.Genres); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing title update: %w", err)
	}
	return nil
}

// DeleteTitle removes a title. Its reviews, their comments, and its genre
// associations are all removed by cascade.
func (db *DB) DeleteTitle(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM titles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting title %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("title", id)
	}
	return nil
}

// --- helpers ----------------------------------------------------------------

func insertTitleGenres(ctx context.Context, tx *sql.Tx, titleID string, genres []model.Genre) error {
	for _, g := range genres {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO title_genres (title_id, genre_id) VALUES (?, ?)`,
			titleID, g.ID); err != nil {
			return fmt.Errorf("sqlite: linking genre %s: %w", g.Slug, err)
		}
	}
	return nil
}

// scanTitle reads one row of titleSelect. Category columns come back NULL
// for uncategorized titles, rating comes back NULL for unreviewed ones; both
// stay nil on the model.
func scanTitle(row interface{ Scan(...any) error }) (*model.Title, error) {
	var (
		t       model.Title
		year    sql.NullInt64
		catID   sql.NullString
		catName sql.NullString
		catSlug sql.NullString
		rating  sql.NullFloat64
	)
	err := row.Scan(&t.ID, &t.Name, &year, &t.Description,
		&catID, &catName, &catSlug, &rating)
	if err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		t.Year = &y
	}
	if catID.Valid {
		t.Category = &model.Category{
			ID:   catID.String,
			Name: catName.String,
			Slug: catSlug.String,
		}
	}
	if rating.Valid {
		r := rating.Float64
		t.Rating = &r
	}
	t.Genres = []model.Genre{}
	return &t, nil
}

// attachGenres loads the genre sets for the given titles in one query.
func (db *DB) attachGenres(ctx context.Context, titles []*model.Title) error {
	if len(titles) == 0 {
		return nil
	}

	byID := make(map[string]*model.Title, len(titles))
	placeholders := make([]string, 0, len(titles))
	args := make([]any, 0, len(titles))
	for _, t := range titles {
		byID[t.ID] = t
		placeholders = append(placeholders, "?")
		args = append(args, t.ID)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT tg.title_id, g.id, g.name, g.slug
		 FROM title_genres tg
		 JOIN genres g ON g.id = tg.genre_id
		 WHERE tg.title_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY g.name DESC`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var titleID string
		var g model.Genre
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return fmt.Errorf("sqlite: scanning title genre row: %w", err)
		}
		if t, ok := byID[titleID]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating title genres: %w", err)
	}
	return nil
}
