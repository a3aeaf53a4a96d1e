package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
)

func TestCreateTitle_FullProjection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	category := seedCategory(t, db, "Books", "books")
	scifi := seedGenre(t, db, "Sci-Fi", "sci-fi")
	drama := seedGenre(t, db, "Drama", "drama")

	year := 1965
	title := &model.Title{
		Name:        "Dune",
		Year:        &year,
		Description: "desert planet",
		Category:    category,
		Genres:      []model.Genre{*scifi, *drama},
	}
	if err := db.CreateTitle(ctx, title); err != nil {
		t.Fatalf("CreateTitle() error = %v", err)
	}
	if title.ID == "" {
		t.Fatal("CreateTitle() did not set title.ID")
	}

	found, err := db.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if found.Name != "Dune" {
		t.Errorf("Name = %q, want %q", found.Name, "Dune")
	}
	if found.Year == nil || *found.Year != 1965 {
		t.Errorf("Year = %v, want 1965", found.Year)
	}
	if found.Category == nil || found.Category.Slug != "books" {
		t.Errorf("Category = %+v, want slug books", found.Category)
	}
	if len(found.Genres) != 2 {
		t.Fatalf("Genres count = %d, want 2", len(found.Genres))
	}
	// Genres come back ordered by name descending.
	if found.Genres[0].Slug != "sci-fi" || found.Genres[1].Slug != "drama" {
		t.Errorf("genre order = [%s, %s], want [sci-fi, drama]",
			found.Genres[0].Slug, found.Genres[1].Slug)
	}
}

func TestGetTitle_NoReviewsMeansNilRating(t *testing.T) {
	db := newTestDB(t)
	title := seedTitle(t, db, "Dune", nil)

	found, err := db.GetTitle(context.Background(), title.ID)
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if found.Rating != nil {
		t.Errorf("Rating = %v, want nil for an unreviewed title", *found.Rating)
	}
	if found.Year != nil {
		t.Errorf("Year = %v, want nil", *found.Year)
	}
	if found.Category != nil {
		t.Errorf("Category = %+v, want nil", found.Category)
	}
}

func TestGetTitle_RatingIsAverageOfScores(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	title := seedTitle(t, db, "Dune", nil)
	seedReview(t, db, title.ID, seedUser(t, db, "alice"), 8)
	seedReview(t, db, title.ID, seedUser(t, db, "bob"), 6)

	found, err := db.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if found.Rating == nil {
		t.Fatal("Rating = nil, want average of review scores")
	}
	if *found.Rating != 7 {
		t.Errorf("Rating = %v, want 7", *found.Rating)
	}
}

func TestGetTitle_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetTitle(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetTitle() error = %v, want ErrNotFound", err)
	}
}

func TestListTitles_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	books := seedCategory(t, db, "Books", "books")
	movies := seedCategory(t, db, "Movies", "movies")
	scifi := seedGenre(t, db, "Sci-Fi", "sci-fi")

	dune := &model.Title{Name: "Dune", Category: books, Genres: []model.Genre{*scifi}}
	if err := db.CreateTitle(ctx, dune); err != nil {
		t.Fatalf("CreateTitle() error = %v", err)
	}
	year := 1979
	alien := &model.Title{Name: "Alien", Year: &year, Category: movies, Genres: []model.Genre{*scifi}}
	if err := db.CreateTitle(ctx, alien); err != nil {
		t.Fatalf("CreateTitle() error = %v", err)
	}
	seedTitle(t, db, "Amadeus", movies)

	byCategory, err := db.ListTitles(ctx, repository.TitleFilter{Category: "books"})
	if err != nil {
		t.Fatalf("ListTitles(category) error = %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].Name != "Dune" {
		t.Errorf("category filter returned %+v, want only Dune", byCategory)
	}

	byGenre, err := db.ListTitles(ctx, repository.TitleFilter{Genre: "sci-fi"})
	if err != nil {
		t.Fatalf("ListTitles(genre) error = %v", err)
	}
	if len(byGenre) != 2 {
		t.Errorf("genre filter returned %d titles, want 2", len(byGenre))
	}

	byName, err := db.ListTitles(ctx, repository.TitleFilter{Name: "lien"})
	if err != nil {
		t.Fatalf("ListTitles(name) error = %v", err)
	}
	if len(byName) != 1 || byName[0].Name != "Alien" {
		t.Errorf("name filter returned %+v, want only Alien", byName)
	}

	byYear, err := db.ListTitles(ctx, repository.TitleFilter{Year: &year})
	if err != nil {
		t.Fatalf("ListTitles(year) error = %v", err)
	}
	if len(byYear) != 1 || byYear[0].Name != "Alien" {
		t.Errorf("year filter returned %+v, want only Alien", byYear)
	}
}

func TestListTitles_OrderedByNameDesc(t *testing.T) {
	db := newTestDB(t)
	seedTitle(t, db, "Alien", nil)
	seedTitle(t, db, "Dune", nil)

	titles, err := db.ListTitles(context.Background(), repository.TitleFilter{})
	if err != nil {
		t.Fatalf("ListTitles() error = %v", err)
	}
	if len(titles) != 2 {
		t.Fatalf("ListTitles() returned %d, want 2", len(titles))
	}
	if titles[0].Name != "Dune" || titles[1].Name != "Alien" {
		t.Errorf("order = [%s, %s], want [Dune, Alien]", titles[0].Name, titles[1].Name)
	}
}

func TestUpdateTitle_ReplacesGenres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	scifi := seedGenre(t, db, "Sci-Fi", "sci-fi")
	drama := seedGenre(t, db, "Drama", "drama")
	title := seedTitle(t, db, "Dune", nil, *scifi)

	title.Name = "Dune Messiah"
	title.Genres = []model.Genre{*drama}
	if err := db.UpdateTitle(ctx, title); err != nil {
		t.Fatalf("UpdateTitle() error = %v", err)
	}

	found, err := db.GetTitle(ctx, title.ID)
	if err != nil {
		t.Fatalf("GetTitle() error = %v", err)
	}
	if found.Name != "Dune Messiah" {
		t.Errorf("Name = %q, want %q", found.Name, "Dune Messiah")
	}
	if len(found.Genres) != 1 || found.Genres[0].Slug != "drama" {
		t.Errorf("Genres = %+v, want only drama", found.Genres)
	}
}

func TestUpdateTitle_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateTitle(context.Background(), &model.Title{ID: "nonexistent", Name: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateTitle() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteTitle_CascadesReviewsAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "alice")
	title := seedTitle(t, db, "Dune", nil)
	review := seedReview(t, db, title.ID, author, 9)
	comment := seedComment(t, db, review.ID, author)

	if err := db.DeleteTitle(ctx, title.ID); err != nil {
		t.Fatalf("DeleteTitle() error = %v", err)
	}

	if _, err := db.GetReview(ctx, title.ID, review.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("review after title delete: error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetComment(ctx, review.ID, comment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("comment after title delete: error = %v, want ErrNotFound", err)
	}
}
