// Package service contains the business logic layer: validation, the
// authorization policy, and orchestration between repositories.
//
// Every mutating method takes the acting user as an explicit parameter
// (nil = anonymous). The policy decision happens here, before any repository
// call, and comes back as apperror.Unauthorized or apperror.Forbidden; the
// handler only translates errors to HTTP.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/permission"
	"github.com/sakif/reviewhub/internal/repository"
)

// requireCatalogWrite is the shared gate for every catalog mutation:
// authenticated AND admin.
func requireCatalogWrite(actor *model.User) error {
	if actor == nil {
		return apperror.Unauthorized("authentication required")
	}
	if !permission.CanWriteCatalog(actor) {
		return apperror.Forbidden("admin role required")
	}
	return nil
}

// CatalogService manages categories, genres, and titles.
type CatalogService struct {
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	titles     repository.TitleRepository
	logger     *slog.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
	titles repository.TitleRepository,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		genres:     genres,
		titles:     titles,
		logger:     logger,
	}
}

// TitleInput is the write projection of a title: category and genres are
// referenced by slug and must already exist.
type TitleInput struct {
	Name        string
	Year        *int
	Description string
	Category    string   // category slug, empty = uncategorized
	Genres      []string // genre slugs
}

// --- categories / genres -----------------------------------------------------

// CreateCategory creates a category. Admin only.
func (s *CatalogService) CreateCategory(ctx context.Context, actor *model.User, name, slug string) (*model.Category, error) {
	if err := requireCatalogWrite(actor); err != nil {
		return nil, err
	}

	category := &model.Category{Name: strings.TrimSpace(name), Slug: slug}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category created",
		slog.String("slug", category.Slug),
		slog.String("actor", actor.Username),
	)
	return category, nil
}

// ListCategories is public.
func (s *CatalogService) ListCategories(ctx context.Context, opts repository.ListOptions) ([]model.Category, error) {
	return s.categories.ListCategories(ctx, opts)
}

// GetCategory is public.
func (s *CatalogService) GetCategory(ctx context.Context, slug string) (*model.Category, error) {
	return s.categories.GetCategoryBySlug(ctx, slug)
}

// DeleteCategory deletes a category. Admin only. Titles referencing it are
// kept and lose the reference.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *model.User, slug string) error {
	if err := requireCatalogWrite(actor); err != nil {
		return err
	}
	if err := s.categories.DeleteCategory(ctx, slug); err != nil {
		return err
	}
	s.logger.Info("category deleted", slog.String("slug", slug), slog.String("actor", actor.Username))
	return nil
}

// CreateGenre creates a genre. Admin only.
func (s *CatalogService) CreateGenre(ctx context.Context, actor *model.User, name, slug string) (*model.Genre, error) {
	if err := requireCatalogWrite(actor); err != nil {
		return nil, err
	}

	genre := &model.Genre{Name: strings.TrimSpace(name), Slug: slug}
	if err := s.genres.CreateGenre(ctx, genre); err != nil {
		return nil, fmt.Errorf("creating genre: %w", err)
	}

	s.logger.Info("genre created",
		slog.String("slug", genre.Slug),
		slog.String("actor", actor.Username),
	)
	return genre, nil
}

// ListGenres is public.
func (s *CatalogService) ListGenres(ctx context.Context, opts repository.ListOptions) ([]model.Genre, error) {
	return s.genres.ListGenres(ctx, opts)
}

// GetGenre is public.
func (s *CatalogService) GetGenre(ctx context.Context, slug string) (*model.Genre, error) {
	return s.genres.GetGenreBySlug(ctx, slug)
}

// DeleteGenre deletes a genre. Admin only.
func (s *CatalogService) DeleteGenre(ctx context.Context, actor *model.User, slug string) error {
	if err := requireCatalogWrite(actor); err != nil {
		return err
	}
	if err := s.genres.DeleteGenre(ctx, slug); err != nil {
		return err
	}
	s.logger.Info("genre deleted", slog.String("slug", slug), slog.String("actor", actor.Username))
	return nil
}

// --- titles ------------------------------------------------------------------

// CreateTitle creates a title. Admin only. Category and genre slugs must
// reference existing rows; an unknown slug is a validation error, never an
// auto-create.
func (s *CatalogService) CreateTitle(ctx context.Context, actor *model.User, input TitleInput) (*model.Title, error) {
	if err := requireCatalogWrite(actor); err != nil {
		return nil, err
	}

	title, err := s.resolveTitleInput(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.titles.CreateTitle(ctx, title); err != nil {
		return nil, fmt.Errorf("creating title: %w", err)
	}

	s.logger.Info("title created",
		slog.String("id", title.ID),
		slog.String("name", title.Name),
		slog.String("actor", actor.Username),
	)

	// Re-read for the full projection (rating is part of the read shape).
	return s.titles.GetTitle(ctx, title.ID)
}

// GetTitle is public. The result embeds the category, genres, and rating.
func (s *CatalogService) GetTitle(ctx context.Context, id string) (*model.Title, error) {
	return s.titles.GetTitle(ctx, id)
}

// ListTitles is public.
func (s *CatalogService) ListTitles(ctx context.Context, filter repository.TitleFilter) ([]model.Title, error) {
	return s.titles.ListTitles(ctx, filter)
}

// UpdateTitle replaces the title's fields and associations. Admin only.
func (s *CatalogService) UpdateTitle(ctx context.Context, actor *model.User, id string, input TitleInput) (*model.Title, error) {
	if err := requireCatalogWrite(actor); err != nil {
		return nil, err
	}

	// Confirm the title exists before resolving slugs, so a bad ID reports
	// not-found rather than a slug validation error.
	if _, err := s.titles.GetTitle(ctx, id); err != nil {
		return nil, err
	}

	title, err := s.resolveTitleInput(ctx, input)
	if err != nil {
		return nil, err
	}
	title.ID = id

	if err := s.titles.UpdateTitle(ctx, title); err != nil {
		return nil, fmt.Errorf("updating title: %w", err)
	}

	s.logger.Info("title updated", slog.String("id", id), slog.String("actor", actor.Username))
	return s.titles.GetTitle(ctx, id)
}

// DeleteTitle deletes a title and, by cascade, its reviews and their
// comments. Admin only.
func (s *CatalogService) DeleteTitle(ctx context.Context, actor *model.User, id string) error {
	if err := requireCatalogWrite(actor); err != nil {
		return err
	}
	if err := s.titles.DeleteTitle(ctx, id); err != nil {
		return err
	}
	s.logger.Info("title deleted", slog.String("id", id), slog.String("actor", actor.Username))
	return nil
}

// resolveTitleInput validates the write projection and resolves slug
// references to catalog rows.
func (s *CatalogService) resolveTitleInput(ctx context.Context, input TitleInput) (*model.Title, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "title name is required")
	}

	title := &model.Title{
		Name:        name,
		Year:        input.Year,
		Description: strings.TrimSpace(input.Description),
		Genres:      []model.Genre{},
	}

	if input.Category != "" {
		category, err := s.categories.GetCategoryBySlug(ctx, input.Category)
		if err != nil {
			return nil, apperror.ValidationFailed("category",
				fmt.Sprintf("unknown category slug %q", input.Category))
		}
		title.Category = category
	}

	for _, slug := range input.Genres {
		genre, err := s.genres.GetGenreBySlug(ctx, slug)
		if err != nil {
			return nil, apperror.ValidationFailed("genre",
				fmt.Sprintf("unknown genre slug %q", slug))
		}
		title.Genres = append(title.Genres, *genre)
	}

	return title, nil
}
