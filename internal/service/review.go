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

// ReviewService manages reviews and their comments.
//
// Every operation resolves the parent chain named by the request path first:
// a review lives under a title, a comment under a review under a title. A
// chain that does not resolve is a not-found regardless of the actor.
type ReviewService struct {
	titles   repository.TitleRepository
	reviews  repository.ReviewRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(
	titles repository.TitleRepository,
	reviews repository.ReviewRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		titles:   titles,
		reviews:  reviews,
		comments: comments,
		logger:   logger,
	}
}

// requireOwnedWrite gates review/comment mutations: authenticated AND
// (author OR moderator OR admin).
func requireOwnedWrite(actor *model.User, authorID string) error {
	if actor == nil {
		return apperror.Unauthorized("authentication required")
	}
	if !permission.CanWriteOwned(actor, authorID) {
		return apperror.Forbidden("you may only modify your own content")
	}
	return nil
}

func validateReviewInput(text string, score int) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ValidationFailed("text", "review text is required")
	}
	if score < 1 || score > 10 {
		return apperror.ValidationFailed("score", "score must be between 1 and 10")
	}
	return nil
}

// CreateReview adds the actor's review to a title. At most one review per
// (title, author): a duplicate is rejected here when the pre-check sees it,
// or by the unique constraint when two creations race — the caller cannot
// tell the difference.
func (s *ReviewService) CreateReview(ctx context.Context, actor *model.User, titleID, text string, score int) (*model.Review, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	if err := validateReviewInput(text, score); err != nil {
		return nil, err
	}

	if _, err := s.titles.GetTitle(ctx, titleID); err != nil {
		return nil, err
	}

	exists, err := s.reviews.ReviewExists(ctx, titleID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("checking existing review: %w", err)
	}
	if exists {
		return nil, apperror.Conflict("review for this title by this author already exists")
	}

	review := &model.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Text:     strings.TrimSpace(text),
		Score:    score,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	s.logger.Info("review created",
		slog.String("id", review.ID),
		slog.String("title", titleID),
		slog.String("author", actor.Username),
	)
	return review, nil
}

// ListReviews returns a title's reviews, newest first. Public.
func (s *ReviewService) ListReviews(ctx context.Context, titleID string, opts repository.ListOptions) ([]model.Review, error) {
	if _, err := s.titles.GetTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.ListReviews(ctx, titleID, opts)
}

// GetReview returns one review of a title. Public.
func (s *ReviewService) GetReview(ctx context.Context, titleID, reviewID string) (*model.Review, error) {
	if _, err := s.titles.GetTitle(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.GetReview(ctx, titleID, reviewID)
}

// UpdateReview modifies a review's text and score. Author, moderator, or
// admin. The uniqueness rule does not apply: updating your own review is the
// same row, not a second one.
func (s *ReviewService) UpdateReview(ctx context.Context, actor *model.User, titleID, reviewID, text string, score int) (*model.Review, error) {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnedWrite(actor, review.AuthorID); err != nil {
		return nil, err
	}
	if err := validateReviewInput(text, score); err != nil {
		return nil, err
	}

	review.Text = strings.TrimSpace(text)
	review.Score = score
	if err := s.reviews.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("updating review: %w", err)
	}

	s.logger.Info("review updated",
		slog.String("id", reviewID),
		slog.String("actor", actor.Username),
	)
	return review, nil
}

// DeleteReview removes a review and its comments. Author, moderator, or
// admin.
func (s *ReviewService) DeleteReview(ctx context.Context, actor *model.User, titleID, reviewID string) error {
	review, err := s.GetReview(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := requireOwnedWrite(actor, review.AuthorID); err != nil {
		return err
	}

	if err := s.reviews.DeleteReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	s.logger.Info("review deleted",
		slog.String("id", reviewID),
		slog.String("actor", actor.Username),
	)
	return nil
}

// --- comments ----------------------------------------------------------------

// CreateComment adds the actor's comment to a review. The full chain
// (title → review) must resolve.
func (s *ReviewService) CreateComment(ctx context.Context, actor *model.User, titleID, reviewID, text string) (*model.Comment, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Author:   actor.Username,
		Text:     strings.TrimSpace(text),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("review", reviewID),
		slog.String("author", actor.Username),
	)
	return comment, nil
}

// ListComments returns a review's comments, newest first. Public.
func (s *ReviewService) ListComments(ctx context.Context, titleID, reviewID string, opts repository.ListOptions) ([]model.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.ListComments(ctx, reviewID, opts)
}

// GetComment returns one comment, with the full chain checked. Public.
func (s *ReviewService) GetComment(ctx context.Context, titleID, reviewID, commentID string) (*model.Comment, error) {
	if _, err := s.GetReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.GetComment(ctx, reviewID, commentID)
}

// UpdateComment modifies a comment's text. Author, moderator, or admin.
func (s *ReviewService) UpdateComment(ctx context.Context, actor *model.User, titleID, reviewID, commentID, text string) (*model.Comment, error) {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwnedWrite(actor, comment.AuthorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	comment.Text = strings.TrimSpace(text)
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}

	s.logger.Info("comment updated",
		slog.String("id", commentID),
		slog.String("actor", actor.Username),
	)
	return comment, nil
}

// DeleteComment removes a comment. Author, moderator, or admin.
func (s *ReviewService) DeleteComment(ctx context.Context, actor *model.User, titleID, reviewID, commentID string) error {
	comment, err := s.GetComment(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := requireOwnedWrite(actor, comment.AuthorID); err != nil {
		return err
	}

	if err := s.comments.DeleteComment(ctx, reviewID, commentID); err != nil {
		return err
	}
	s.logger.Info("comment deleted",
		slog.String("id", commentID),
		slog.String("actor", actor.Username),
	)
	return nil
}
