package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/auth"
	"github.com/sakif/reviewhub/internal/model"
	"github.com/sakif/reviewhub/internal/notify"
	"github.com/sakif/reviewhub/internal/repository"
)

// AuthService implements the signup → confirmation code → token flow.
//
// Known limitation, kept on purpose: confirmation codes are issued once and
// never rotated, expired, or invalidated, and neither signup nor token
// exchange is rate limited. This matches the upstream behaviour the API
// contract was written against; tightening it would break idempotent signup
// retries, so it should be revisited deliberately, not patched in passing.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	sender notify.Sender
	logger *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	sender notify.Sender,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		sender: sender,
		logger: logger,
	}
}

// Signup registers (username, email) and sends a confirmation code.
//
// The operation is idempotent for an existing user with the exact same
// (username, email) pair: the previously issued code is re-sent, never
// rotated. A username or email that collides with a *different* account is
// a validation error.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*model.User, error) {
	if username == model.ReservedUsername {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username %q is reserved", model.ReservedUsername))
	}

	existing, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Email != email {
			return nil, apperror.ValidationFailed("username",
				fmt.Sprintf("username %q is already taken", username))
		}
		// Same pair again: reuse the stored code.
		s.deliverCode(existing)
		return existing, nil
	case errors.Is(err, apperror.ErrNotFound):
		// fresh username, continue
	default:
		return nil, fmt.Errorf("looking up username: %w", err)
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.ValidationFailed("email",
			fmt.Sprintf("email %q is already registered", email))
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up email: %w", err)
	}

	code, err := auth.NewConfirmationCode()
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:         username,
		Email:            email,
		Role:             model.RoleUser,
		ConfirmationCode: code,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// A concurrent signup with the same pair may have won the race; the
		// constraint error already has the right shape for the client.
		return nil, err
	}

	s.logger.Info("user signed up",
		slog.String("username", username),
	)
	s.deliverCode(user)
	return user, nil
}

// deliverCode sends the confirmation code, fire-and-forget: a delivery
// failure is logged and the signup still succeeds.
func (s *AuthService) deliverCode(user *model.User) {
	err := s.sender.Send(user.Email, "Confirmation code", user.ConfirmationCode)
	if err != nil {
		s.logger.Error("confirmation code delivery failed",
			slog.String("username", user.Username),
			slog.String("error", err.Error()),
		)
	}
}

// ExchangeToken verifies (username, confirmation_code) and returns a signed
// access token. Unknown or reserved usernames are not-found; a wrong code is
// a validation error and issues nothing. The code stays valid afterwards.
func (s *AuthService) ExchangeToken(ctx context.Context, username, code string) (string, error) {
	if username == model.ReservedUsername {
		return "", apperror.NotFound("user", username)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if user.ConfirmationCode == "" || user.ConfirmationCode != code {
		s.logger.Warn("token exchange with wrong confirmation code",
			slog.String("username", username),
		)
		return "", apperror.ValidationFailed("confirmation_code", "invalid confirmation code")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", fmt.Errorf("generating token for %s: %w", username, err)
	}

	s.logger.Info("token issued", slog.String("username", username))
	return token, nil
}

// GetActor resolves the authenticated user record for the ID the middleware
// pulled out of the JWT. Used by handlers on protected routes.
func (s *AuthService) GetActor(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("authentication required")
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Token outlived the account.
			return nil, apperror.Unauthorized("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}
