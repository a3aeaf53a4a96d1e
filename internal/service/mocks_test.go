package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/repository"
)

// Hand-written in-memory mocks for the repository interfaces. They keep the
// same error contracts as the SQLite implementation (conflicts on unique
// violations, not-found on misses) so the service logic under test cannot
// tell them apart.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- users -------------------------------------------------------------------

type mockUserRepo struct {
	users  map[string]*model.User // by ID
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperror.Conflict(fmt.Sprintf("user %q already exists", user.Username))
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) ListUsers(_ context.Context, opts repository.ListOptions) ([]model.User, error) {
	result := []model.User{}
	for _, u := range m.users {
		if opts.Search != "" && !strings.Contains(u.Username, opts.Search) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, username string) error {
	for id, u := range m.users {
		if u.Username == username {
			delete(m.users, id)
			return nil
		}
	}
	return apperror.NotFound("user", username)
}

// seed inserts a user directly, bypassing the service layer.
func (m *mockUserRepo) seed(t *testing.T, username string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Role:     role,
	}
	if err := m.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

// --- categories / genres -----------------------------------------------------

type mockCategoryRepo struct {
	categories map[string]*model.Category // by slug
	nextID     int
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{categories: make(map[string]*model.Category)}
}

func (m *mockCategoryRepo) CreateCategory(_ context.Context, category *model.Category) error {
	if _, ok := m.categories[category.Slug]; ok {
		return apperror.Conflict(fmt.Sprintf("slug %q already exists", category.Slug))
	}
	m.nextID++
	category.ID = fmt.Sprintf("cat-%d", m.nextID)
	stored := *category
	m.categories[category.Slug] = &stored
	return nil
}

func (m *mockCategoryRepo) GetCategoryBySlug(_ context.Context, slug string) (*model.Category, error) {
	c, ok := m.categories[slug]
	if !ok {
		return nil, apperror.NotFound("category", slug)
	}
	result := *c
	return &result, nil
}

func (m *mockCategoryRepo) ListCategories(_ context.Context, _ repository.ListOptions) ([]model.Category, error) {
	result := []model.Category{}
	for _, c := range m.categories {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCategoryRepo) DeleteCategory(_ context.Context, slug string) error {
	if _, ok := m.categories[slug]; !ok {
		return apperror.NotFound("category", slug)
	}
	delete(m.categories, slug)
	return nil
}

type mockGenreRepo struct {
	genres map[string]*model.Genre // by slug
	nextID int
}

func newMockGenreRepo() *mockGenreRepo {
	return &mockGenreRepo{genres: make(map[string]*model.Genre)}
}

func (m *mockGenreRepo) CreateGenre(_ context.Context, genre *model.Genre) error {
	if _, ok := m.genres[genre.Slug]; ok {
		return apperror.Conflict(fmt.Sprintf("slug %q already exists", genre.Slug))
	}
	m.nextID++
	genre.ID = fmt.Sprintf("genre-%d", m.nextID)
	stored := *genre
	m.genres[genre.Slug] = &stored
	return nil
}

func (m *mockGenreRepo) GetGenreBySlug(_ context.Context, slug string) (*model.Genre, error) {
	g, ok := m.genres[slug]
	if !ok {
		return nil, apperror.NotFound("genre", slug)
	}
	result := *g
	return &result, nil
}

func (m *mockGenreRepo) ListGenres(_ context.Context, _ repository.ListOptions) ([]model.Genre, error) {
	result := []model.Genre{}
	for _, g := range m.genres {
		result = append(result, *g)
	}
	return result, nil
}

func (m *mockGenreRepo) DeleteGenre(_ context.Context, slug string) error {
	if _, ok := m.genres[slug]; !ok {
		return apperror.NotFound("genre", slug)
	}
	delete(m.genres, slug)
	return nil
}

// --- titles ------------------------------------------------------------------

type mockTitleRepo struct {
	titles map[string]*model.Title
	nextID int
}

func newMockTitleRepo() *mockTitleRepo {
	return &mockTitleRepo{titles: make(map[string]*model.Title)}
}

func (m *mockTitleRepo) CreateTitle(_ context.Context, title *model.Title) error {
	m.nextID++
	title.ID = fmt.Sprintf("title-%d", m.nextID)
	stored := *title
	m.titles[title.ID] = &stored
	return nil
}

func (m *mockTitleRepo) GetTitle(_ context.Context, id string) (*model.Title, error) {
	t, ok := m.titles[id]
	if !ok {
		return nil, apperror.NotFound("title", id)
	}
	result := *t
	return &result, nil
}

func (m *mockTitleRepo) ListTitles(_ context.Context, _ repository.TitleFilter) ([]model.Title, error) {
	result := []model.Title{}
	for _, t := range m.titles {
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTitleRepo) UpdateTitle(_ context.Context, title *model.Title) error {
	if _, ok := m.titles[title.ID]; !ok {
		return apperror.NotFound("title", title.ID)
	}
	stored := *title
	m.titles[title.ID] = &stored
	return nil
}

func (m *mockTitleRepo) DeleteTitle(_ context.Context, id string) error {
	if _, ok := m.titles[id]; !ok {
		return apperror.NotFound("title", id)
	}
	delete(m.titles, id)
	return nil
}

func (m *mockTitleRepo) seed(t *testing.T, name string) *model.Title {
	t.Helper()
	title := &model.Title{Name: name, Genres: []model.Genre{}}
	if err := m.CreateTitle(context.Background(), title); err != nil {
		t.Fatalf("failed to seed title %s: %v", name, err)
	}
	return title
}

// --- reviews / comments ------------------------------------------------------

type mockReviewRepo struct {
	reviews map[string]*model.Review
	nextID  int
}

func newMockReviewRepo() *mockReviewRepo {
	return &mockReviewRepo{reviews: make(map[string]*model.Review)}
}

func (m *mockReviewRepo) CreateReview(_ context.Context, review *model.Review) error {
	for _, r := range m.reviews {
		if r.TitleID == review.TitleID && r.AuthorID == review.AuthorID {
			return apperror.Conflict("review for this title by this author already exists")
		}
	}
	m.nextID++
	review.ID = fmt.Sprintf("review-%d", m.nextID)
	stored := *review
	m.reviews[review.ID] = &stored
	return nil
}

func (m *mockReviewRepo) GetReview(_ context.Context, titleID, reviewID string) (*model.Review, error) {
	r, ok := m.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return nil, apperror.NotFound("review", reviewID)
	}
	result := *r
	return &result, nil
}

func (m *mockReviewRepo) ListReviews(_ context.Context, titleID string, _ repository.ListOptions) ([]model.Review, error) {
	result := []model.Review{}
	for _, r := range m.reviews {
		if r.TitleID == titleID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReviewRepo) ReviewExists(_ context.Context, titleID, authorID string) (bool, error) {
	for _, r := range m.reviews {
		if r.TitleID == titleID && r.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockReviewRepo) UpdateReview(_ context.Context, review *model.Review) error {
	if _, ok := m.reviews[review.ID]; !ok {
		return apperror.NotFound("review", review.ID)
	}
	stored := *review
	m.reviews[review.ID] = &stored
	return nil
}

func (m *mockReviewRepo) DeleteReview(_ context.Context, titleID, reviewID string) error {
	r, ok := m.reviews[reviewID]
	if !ok || r.TitleID != titleID {
		return apperror.NotFound("review", reviewID)
	}
	delete(m.reviews, reviewID)
	return nil
}

type mockCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{comments: make(map[string]*model.Comment)}
}

func (m *mockCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockCommentRepo) GetComment(_ context.Context, reviewID, commentID string) (*model.Comment, error) {
	c, ok := m.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, apperror.NotFound("comment", commentID)
	}
	result := *c
	return &result, nil
}

func (m *mockCommentRepo) ListComments(_ context.Context, reviewID string, _ repository.ListOptions) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.ReviewID == reviewID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommentRepo) UpdateComment(_ context.Context, comment *model.Comment) error {
	if _, ok := m.comments[comment.ID]; !ok {
		return apperror.NotFound("comment", comment.ID)
	}
	stored := *comment
	m.comments[comment.ID] = &stored
	return nil
}

func (m *mockCommentRepo) DeleteComment(_ context.Context, reviewID, commentID string) error {
	c, ok := m.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return apperror.NotFound("comment", commentID)
	}
	delete(m.comments, commentID)
	return nil
}

// --- mail --------------------------------------------------------------------

type sentMail struct {
	recipient string
	subject   string
	body      string
}

// mockSender records every delivery so tests can assert on the code flow.
type mockSender struct {
	sent []sentMail
	err  error // returned from Send when non-nil
}

func (m *mockSender) Send(recipient, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{recipient: recipient, subject: subject, body: body})
	return nil
}
