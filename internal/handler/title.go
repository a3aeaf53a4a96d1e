package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/reviewhub/internal/service"
	"github.com/sakif/reviewhub/internal/validation"
)

// TitleHandler serves the title CRUD endpoints.
type TitleHandler struct {
	catalog *service.CatalogService
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewTitleHandler creates a TitleHandler.
func NewTitleHandler(catalog *service.CatalogService, authSvc *service.AuthService, logger *slog.Logger) *TitleHandler {
	return &TitleHandler{catalog: catalog, authSvc: authSvc, logger: logger}
}

// titleRequest is the write projection: category and genre by slug.
type titleRequest struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        *int     `json:"year" validate:"omitempty,gte=0"`
	Description string   `json:"description" validate:"max=10000"`
	Category    string   `json:"category" validate:"omitempty,slug"`
	Genre       []string `json:"genre" validate:"dive,slug"`
}

func (req *titleRequest) toInput() service.TitleInput {
	return service.TitleInput{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		Category:    req.Category,
		Genres:      req.Genre,
	}
}

// HandleCreate handles POST /api/v1/titles (admin).
func (h *TitleHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
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

	title, err := h.catalog.CreateTitle(r.Context(), actor, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, title)
}

// HandleList handles GET /api/v1/titles (public). Supports
// ?category=&genre=&name=&year=&limit=&offset=.
func (h *TitleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	titles, err := h.catalog.ListTitles(r.Context(), titleFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

// HandleGet handles GET /api/v1/titles/{titleID} (public).
func (h *TitleHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	title, err := h.catalog.GetTitle(r.Context(), r.PathValue("titleID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, title)
}

// HandleUpdate handles PATCH /api/v1/titles/{titleID} (admin).
func (h *TitleHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
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

	title, err := h.catalog.UpdateTitle(r.Context(), actor, r.PathValue("titleID"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, title)
}

// HandleDelete handles DELETE /api/v1/titles/{titleID} (admin). The title's
// reviews and their comments go with it.
func (h *TitleHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.catalog.DeleteTitle(r.Context(), actor, r.PathValue("titleID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
