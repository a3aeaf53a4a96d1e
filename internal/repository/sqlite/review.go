package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
)

// compile-time checks
var (
	_ repository.ReviewRepository  = (*DB)(nil)
	_ repository.CommentRepository = (*DB)(nil)
)

// CreateReview inserts a review. A second review by the same author for the
// same title violates UNIQUE(title_id, author_id) and comes back as a
// conflict — this is the backstop for the service-level existence check when
// two creations race.
func (db *DB) CreateReview(ctx context.Context, review *model.Review) error {
	review.ID = xid.New().String()
	review.PubDate = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO reviews (id, title_id, author_id, text, score, pub_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		review.ID, review.TitleID, review.AuthorID, review.Text, review.Score,
		review.PubDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("review for this title by this author already exists")
		}
		return fmt.Errorf("sqlite: creating review: %w", err)
	}
	return nil
}

const reviewSelect = `
	SELECT r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date
	FROM reviews r
	JOIN users u ON u.id = r.author_id`

// GetReview retrieves a review scoped to its title: asking for an existing
// review through the wrong title is a not-found, never a leak.
func (db *DB) GetReview(ctx context.Context, titleID, reviewID string) (*model.Review, error) {
	var r model.Review
	err := db.conn.QueryRowContext(ctx,
		reviewSelect+` WHERE r.id = ? AND r.title_id = ?`, reviewID, titleID,
	).Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.PubDate)
	if err != nil {
		if errIsNoRows(err) {
			return nil, apperror.NotFound("review", reviewID)
		}
		return nil, fmt.Errorf("sqlite: getting review %s: %w", reviewID, err)
	}
	return &r, nil
}

// ListReviews returns the reviews of one title, newest first.
func (db *DB) ListReviews(ctx context.Context, titleID string, opts repository.ListOptions) ([]model.Review, error) {
	limit, offset := clampList(opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		reviewSelect+` WHERE r.title_id = ?
		 ORDER BY r.pub_date DESC LIMIT ? OFFSET ?`,
		titleID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]model.Review, 0, limit)
	for rows.Next() {
		var r model.Review
		if err := rows.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author,
			&r.Text, &r.Score, &r.PubDate); err != nil {
			return nil, fmt.Errorf("sqlite: scanning review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating reviews: %w", err)
	}
	return reviews, nil
}

// ReviewExists reports whether the author already reviewed the title.
func (db *DB) ReviewExists(ctx context.Context, titleID, authorID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE title_id = ? AND author_id = ?`,
		titleID, authorID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking review existence: %w", err)
	}
	return count > 0, nil
}

// UpdateReview saves text and score. The author, title, and pub_date are
// immutable.
func (db *DB) UpdateReview(ctx context.Context, review *model.Review) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE reviews SET text = ?, score = ? WHERE id = ?`,
		review.Text, review.Score, review.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating review %s: %w", review.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("review", review.ID)
	}
	return nil
}

// DeleteReview removes a review (and, by cascade, its comments), scoped to
// the title it belongs to.
func (db *DB) DeleteReview(ctx context.Context, titleID, reviewID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = ? AND title_id = ?`, reviewID, titleID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting review %s: %w", reviewID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("review", reviewID)
	}
	return nil
}

// --- comments ----------------------------------------------------------------

const commentSelect = `
	SELECT c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date
	FROM comments c
	JOIN users u ON u.id = c.author_id`

// CreateComment inserts a comment on a review.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.PubDate = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, review_id, author_id, text, pub_date)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID, comment.ReviewID, comment.AuthorID, comment.Text, comment.PubDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment scoped to its review.
func (db *DB) GetComment(ctx context.Context, reviewID, commentID string) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.QueryRowContext(ctx,
		commentSelect+` WHERE c.id = ? AND c.review_id = ?`, commentID, reviewID,
	).Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate)
	if err != nil {
		if errIsNoRows(err) {
			return nil, apperror.NotFound("comment", commentID)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", commentID, err)
	}
	return &c, nil
}

// ListComments returns the comments of one review, newest first.
func (db *DB) ListComments(ctx context.Context, reviewID string, opts repository.ListOptions) ([]model.Comment, error) {
	limit, offset := clampList(opts.Limit, opts.Offset)

	rows, err := db.conn.QueryContext(ctx,
		commentSelect+` WHERE c.review_id = ?
		 ORDER BY c.pub_date DESC LIMIT ? OFFSET ?`,
		reviewID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author,
			&c.Text, &c.PubDate); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// UpdateComment saves the text. Author, review, and pub_date are immutable.
func (db *DB) UpdateComment(ctx context.Context, comment *model.Comment) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE comments SET text = ? WHERE id = ?`,
		comment.Text, comment.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating comment %s: %w", comment.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", comment.ID)
	}
	return nil
}

// DeleteComment removes a comment, scoped to its review.
func (db *DB) DeleteComment(ctx context.Context, reviewID, commentID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM comments WHERE id = ? AND review_id = ?`, commentID, reviewID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", commentID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", commentID)
	}
	return nil
}
