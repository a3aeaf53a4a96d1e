package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/service"
	"github.com/sakif/reviewhub/internal/validation"
)

// UserHandler serves the admin user-management endpoints and /users/me.
type UserHandler struct {
	users   *service.UserService
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, authSvc *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, authSvc: authSvc, logger: logger}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=150,slug"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Role     string `json:"role" validate:"omitempty,max=20"`
}

// updateUserRequest carries only the fields present in the body; absent
// fields stay nil and leave the stored value alone.
type updateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" validate:"omitempty,max=20"`
}

func (req *updateUserRequest) toInput() service.UserInput {
	input := service.UserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	if req.Role != nil {
		role := model.Role(*req.Role)
		input.Role = &role
	}
	return input
}

// HandleCreate handles POST /api/v1/users (admin).
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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

	user, err := h.users.CreateUser(r.Context(), actor, req.Username, req.Email, model.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// HandleList handles GET /api/v1/users (admin). Supports ?search= over
// usernames.
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	users, err := h.users.ListUsers(r.Context(), actor, listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet handles GET /api/v1/users/{username} (admin).
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.users.GetUser(r.Context(), actor, r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate handles PATCH /api/v1/users/{username} (admin). Role changes
// are allowed on this path.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
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

	user, err := h.users.UpdateUser(r.Context(), actor, r.PathValue("username"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDelete handles DELETE /api/v1/users/{username} (admin).
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), actor, r.PathValue("username")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetMe handles GET /api/v1/users/me: the actor's own profile.
func (h *UserHandler) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.authSvc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actor)
}

// HandleUpdateMe handles PATCH /api/v1/users/me. Any authenticated user may
// edit their profile; a role in the body is ignored unless the actor is an
// admin.
func (h *UserHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
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

	user, err := h.users.UpdateSelf(r.Context(), actor, req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
