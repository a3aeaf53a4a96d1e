package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/auth"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/permission"
	"github.com/sakif/reviewhub/internal/repository"
)

// UserService covers the admin user-management endpoints and the
// self-service profile.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// requireUserAdmin gates the /users endpoints: authenticated AND admin.
func requireUserAdmin(actor *model.User) error {
	if actor == nil {
		return apperror.Unauthorized("authentication required")
	}
	if !permission.CanManageUsers(actor) {
		return apperror.Forbidden("admin role required")
	}
	return nil
}

// UserInput carries the mutable profile fields. Pointer fields distinguish
// "not provided" from "set to empty" on partial updates.
type UserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *model.Role
}

// CreateUser creates an account with an optional explicit role. Admin only.
// The created account gets a confirmation code immediately so the user can
// obtain a token without going through signup.
func (s *UserService) CreateUser(ctx context.Context, actor *model.User, username, email string, role model.Role) (*model.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}
	if username == model.ReservedUsername {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username %q is reserved", model.ReservedUsername))
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", role))
	}

	code, err := auth.NewConfirmationCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:         username,
		Email:            email,
		Role:             role,
		ConfirmationCode: code,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created by admin",
		slog.String("username", username),
		slog.String("role", string(role)),
		slog.String("actor", actor.Username),
	)
	return user, nil
}

// ListUsers lists accounts, optionally filtered by username search. Admin
// only.
func (s *UserService) ListUsers(ctx context.Context, actor *model.User, opts repository.ListOptions) ([]model.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx, opts)
}

// GetUser retrieves one account by username. Admin only.
func (s *UserService) GetUser(ctx context.Context, actor *model.User, username string) (*model.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.GetUserByUsername(ctx, username)
}

// UpdateUser applies a partial update to any account, role included. Admin
// only.
func (s *UserService) UpdateUser(ctx context.Context, actor *model.User, username string, input UserInput) (*model.User, error) {
	if err := requireUserAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	applyProfile(user, input)
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", *input.Role))
		}
		user.Role = *input.Role
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated by admin",
		slog.String("username", username),
		slog.String("actor", actor.Username),
	)
	return user, nil
}

// DeleteUser removes an account; its reviews and comments cascade away.
// Admin only.
func (s *UserService) DeleteUser(ctx context.Context, actor *model.User, username string) error {
	if err := requireUserAdmin(actor); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, username); err != nil {
		return err
	}
	s.logger.Info("user deleted",
		slog.String("username", username),
		slog.String("actor", actor.Username),
	)
	return nil
}

// UpdateSelf applies a partial update to the actor's own profile.
//
// The role field is read-only on this path for non-admins: a provided role
// is dropped before mutation rather than rejected, matching the
// read-then-conditionally-update contract (GET always works, and the PATCH
// succeeds with the role untouched).
func (s *UserService) UpdateSelf(ctx context.Context, actor *model.User, input UserInput) (*model.User, error) {
	if actor == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	user, err := s.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	applyProfile(user, input)
	if input.Role != nil && permission.CanChangeRole(actor) {
		if !input.Role.Valid() {
			return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", *input.Role))
		}
		user.Role = *input.Role
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("username", user.Username))
	return user, nil
}

func applyProfile(user *model.User, input UserInput) {
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
}
