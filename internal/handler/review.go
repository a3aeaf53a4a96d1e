package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/reviewhub/internal/service"
	"github.com/sakif/reviewhub/internal/validation"
)

// ReviewHandler serves the review and comment endpoints nested under
// /titles/{titleID}.
type ReviewHandler struct {
	reviews *service.ReviewService
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService, authSvc *service.AuthService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, authSvc: authSvc, logger: logger}
}

type reviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,gte=1,lte=10"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

// HandleCreateReview handles POST /titles/{titleID}/reviews.
func (h *ReviewHandler) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}

	review, err := h.reviews.CreateReview(r.Context(), actor, r.PathValue("titleID"), req.Text, req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// HandleListReviews handles GET /titles/{titleID}/reviews (public).
func (h *ReviewHandler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListReviews(r.Context(), r.PathValue("titleID"), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

// HandleGetReview handles GET /titles/{titleID}/reviews/{reviewID} (public).
func (h *ReviewHandler) HandleGetReview(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.GetReview(r.Context(), r.PathValue("titleID"), r.PathValue("reviewID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// HandleUpdateReview handles PATCH /titles/{titleID}/reviews/{reviewID}.
func (h *ReviewHandler) HandleUpdateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}

	review, err := h.reviews.UpdateReview(r.Context(), actor,
		r.PathValue("titleID"), r.PathValue("reviewID"), req.Text, req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// HandleDeleteReview handles DELETE /titles/{titleID}/reviews/{reviewID}.
func (h *ReviewHandler) HandleDeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.reviews.DeleteReview(r.Context(), actor, r.PathValue("titleID"), r.PathValue("reviewID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateComment handles POST .../reviews/{reviewID}/comments.
func (h *ReviewHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.reviews.CreateComment(r.Context(), actor,
		r.PathValue("titleID"), r.PathValue("reviewID"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleListComments handles GET .../reviews/{reviewID}/comments (public).
func (h *ReviewHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.reviews.ListComments(r.Context(),
		r.PathValue("titleID"), r.PathValue("reviewID"), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleGetComment handles GET .../comments/{commentID} (public).
func (h *ReviewHandler) HandleGetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.reviews.GetComment(r.Context(),
		r.PathValue("titleID"), r.PathValue("reviewID"), r.PathValue("commentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleUpdateComment handles PATCH .../comments/{commentID}.
func (h *ReviewHandler) HandleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.reviews.UpdateComment(r.Context(), actor,
		r.PathValue("titleID"), r.PathValue("reviewID"), r.PathValue("commentID"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// HandleDeleteComment handles DELETE .../comments/{commentID}.
func (h *ReviewHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.reviews.DeleteComment(r.Context(), actor,
		r.PathValue("titleID"), r.PathValue("reviewID"), r.PathValue("commentID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
