package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/reviewhub/internal/service"
	"github.com/sakif/reviewhub/internal/validation"
)

// CatalogHandler serves the category and genre endpoints. Both resources
// are create/list/retrieve/delete only — there is deliberately no update
// route.
type CatalogHandler struct {
	catalog *service.CatalogService
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, authSvc *service.AuthService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, authSvc: authSvc, logger: logger}
}

// slugResourceRequest is the write shape shared by categories and genres.
type slugResourceRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// HandleCreateCategory handles POST /api/v1/categories (admin).
func (h *CatalogHandler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req slugResourceRequest
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

	category, err := h.catalog.CreateCategory(r.Context(), actor, req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// HandleListCategories handles GET /api/v1/categories (public).
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// HandleGetCategory handles GET /api/v1/categories/{slug} (public).
func (h *CatalogHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategory(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// HandleDeleteCategory handles DELETE /api/v1/categories/{slug} (admin).
func (h *CatalogHandler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), actor, r.PathValue("slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateGenre handles POST /api/v1/genres (admin).
func (h *CatalogHandler) HandleCreateGenre(w http.ResponseWriter, r *http.Request) {
	var req slugResourceRequest
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

	genre, err := h.catalog.CreateGenre(r.Context(), actor, req.Name, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, genre)
}

// HandleListGenres handles GET /api/v1/genres (public).
func (h *CatalogHandler) HandleListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.ListGenres(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genres)
}

// HandleGetGenre handles GET /api/v1/genres/{slug} (public).
func (h *CatalogHandler) HandleGetGenre(w http.ResponseWriter, r *http.Request) {
	genre, err := h.catalog.GetGenre(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

// HandleDeleteGenre handles DELETE /api/v1/genres/{slug} (admin).
func (h *CatalogHandler) HandleDeleteGenre(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteGenre(r.Context(), actor, r.PathValue("slug")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
