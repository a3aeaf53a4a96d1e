// Package repository declares the storage interfaces the service layer
// programs against. The SQLite implementation lives in repository/sqlite;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/reviewhub/internal/model"
)

// ListOptions carries pagination and the optional name/username search used
// by list endpoints.
type ListOptions struct {
	Limit  int
	Offset int
	Search string
}

// TitleFilter narrows title listings. Zero values mean "no constraint".
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // substring match on name
	Year     *int
	Limit    int
	Offset   int
}

// UserRepository persists accounts. Create and Update surface uniqueness
// violations on username or email as apperror conflicts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, username string) error
}

// CategoryRepository persists categories. Categories are addressed by slug
// and have no update operation.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	ListCategories(ctx context.Context, opts ListOptions) ([]model.Category, error)
	DeleteCategory(ctx context.Context, slug string) error
}

// GenreRepository persists genres. Same shape as CategoryRepository.
type GenreRepository interface {
	CreateGenre(ctx context.Context, genre *model.Genre) error
	GetGenreBySlug(ctx context.Context, slug string) (*model.Genre, error)
	ListGenres(ctx context.Context, opts ListOptions) ([]model.Genre, error)
	DeleteGenre(ctx context.Context, slug string) error
}

// TitleRepository persists titles together with their category reference and
// genre set. Reads return the full projection: embedded category, genres,
// and the rating aggregate computed from current reviews.
type TitleRepository interface {
	CreateTitle(ctx context.Context, title *model.Title) error
	GetTitle(ctx context.Context, id string) (*model.Title, error)
	ListTitles(ctx context.Context, filter TitleFilter) ([]model.Title, error)
	UpdateTitle(ctx context.Context, title *model.Title) error
	DeleteTitle(ctx context.Context, id string) error
}

// ReviewRepository persists reviews. CreateReview returns an apperror
// conflict when a review by the same author for the same title already
// exists — the unique constraint backs up the service-level pre-check.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, titleID, reviewID string) (*model.Review, error)
	ListReviews(ctx context.Context, titleID string, opts ListOptions) ([]model.Review, error)
	ReviewExists(ctx context.Context, titleID, authorID string) (bool, error)
	UpdateReview(ctx context.Context, review *model.Review) error
	DeleteReview(ctx context.Context, titleID, reviewID string) error
}

// CommentRepository persists comments scoped to their parent review.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, reviewID, commentID string) (*model.Comment, error)
	ListComments(ctx context.Context, reviewID string, opts ListOptions) ([]model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, reviewID, commentID string) error
}
