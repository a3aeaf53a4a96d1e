package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/sakif/reviewhub/internal/model"
)

// newTestDB opens a throwaway in-memory database with the full schema
// applied. Closed automatically when the test (or subtest) finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func seedCategory(t *testing.T, db *DB, name, slug string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: slug}
	if err := db.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("failed to seed category %s: %v", slug, err)
	}
	return category
}

func seedGenre(t *testing.T, db *DB, name, slug string) *model.Genre {
	t.Helper()
	genre := &model.Genre{Name: name, Slug: slug}
	if err := db.CreateGenre(context.Background(), genre); err != nil {
		t.Fatalf("failed to seed genre %s: %v", slug, err)
	}
	return genre
}

func seedTitle(t *testing.T, db *DB, name string, category *model.Category, genres ...model.Genre) *model.Title {
	t.Helper()
	title := &model.Title{
		Name:     name,
		Category: category,
		Genres:   genres,
	}
	if err := db.CreateTitle(context.Background(), title); err != nil {
		t.Fatalf("failed to seed title %s: %v", name, err)
	}
	return title
}

func seedReview(t *testing.T, db *DB, titleID string, author *model.User, score int) *model.Review {
	t.Helper()
	review := &model.Review{
		TitleID:  titleID,
		AuthorID: author.ID,
		Text:     "seed review",
		Score:    score,
	}
	if err := db.CreateReview(context.Background(), review); err != nil {
		t.Fatalf("failed to seed review: %v", err)
	}
	return review
}

func seedComment(t *testing.T, db *DB, reviewID string, author *model.User) *model.Comment {
	t.Helper()
	comment := &model.Comment{
		ReviewID: reviewID,
		AuthorID: author.ID,
		Text:     "seed comment",
	}
	if err := db.CreateComment(context.Background(), comment); err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	return comment
}
