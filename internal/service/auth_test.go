package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/reviewhub/internal/apperror"
	"github.com/sakif/reviewhub/internal/auth"
)

func newAuthTestService(t *testing.T) (*AuthService, *mockUserRepo, *mockSender) {
	t.Helper()
	users := newMockUserRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16", time.Hour)
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}
	sender := &mockSender{}
	svc := NewAuthService(users, tokens, sender, testLogger())
	return svc, users, sender
}

func TestSignup_NewUser(t *testing.T) {
	svc, _, sender := newAuthTestService(t)

	user, err := svc.Signup(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if user.ConfirmationCode == "" {
		t.Error("Signup() did not issue a confirmation code")
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sender received %d messages, want 1", len(sender.sent))
	}
	if sender.sent[0].recipient != "alice@example.com" {
		t.Errorf("recipient = %q, want alice@example.com", sender.sent[0].recipient)
	}
	if sender.sent[0].body != user.ConfirmationCode {
		t.Error("mail body does not carry the confirmation code")
	}
}

func TestSignup_SamePairIsIdempotent(t *testing.T) {
	svc, _, sender := newAuthTestService(t)
	ctx := context.Background()

	first, err := svc.Signup(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}
	second, err := svc.Signup(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("second Signup() error = %v", err)
	}

	// The stored code is re-sent, never rotated.
	if second.ConfirmationCode != first.ConfirmationCode {
		t.Error("repeat signup rotated the confirmation code")
	}
	if len(sender.sent) != 2 {
		t.Errorf("sender received %d messages, want 2", len(sender.sent))
	}
	if sender.sent[1].body != first.ConfirmationCode {
		t.Error("repeat signup mailed a different code")
	}
}

func TestSignup_ReservedUsername(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	_, err := svc.Signup(context.Background(), "me", "me@example.com")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Signup() error = %v, want ErrValidation", err)
	}
}

func TestSignup_UsernameTakenWithDifferentEmail(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice", "alice@example.com"); err != nil {
		t.Fatalf("setup Signup() error = %v", err)
	}

	_, err := svc.Signup(ctx, "alice", "other@example.com")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Signup() error = %v, want ErrValidation", err)
	}
}

func TestSignup_EmailTakenByAnotherUsername(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice", "alice@example.com"); err != nil {
		t.Fatalf("setup Signup() error = %v", err)
	}

	_, err := svc.Signup(ctx, "bob", "alice@example.com")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Signup() error = %v, want ErrValidation", err)
	}
}

func TestSignup_DeliveryFailureStillSucceeds(t *testing.T) {
	svc, _, sender := newAuthTestService(t)
	sender.err = errors.New("relay down")

	user, err := svc.Signup(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("Signup() error = %v, want success despite delivery failure", err)
	}
	if user.ConfirmationCode == "" {
		t.Error("Signup() did not issue a confirmation code")
	}
}

func TestExchangeToken_Success(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("setup Signup() error = %v", err)
	}

	token, err := svc.ExchangeToken(ctx, "alice", user.ConfirmationCode)
	if err != nil {
		t.Fatalf("ExchangeToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("ExchangeToken() returned an empty token")
	}

	// The token must resolve back to the account.
	actor, err := svc.GetActor(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActor() error = %v", err)
	}
	if actor.Username != "alice" {
		t.Errorf("actor.Username = %q, want alice", actor.Username)
	}
}

func TestExchangeToken_WrongCode(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "alice", "alice@example.com"); err != nil {
		t.Fatalf("setup Signup() error = %v", err)
	}

	_, err := svc.ExchangeToken(ctx, "alice", "wrong-code")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ExchangeToken() error = %v, want ErrValidation", err)
	}
}

func TestExchangeToken_UnknownUser(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	_, err := svc.ExchangeToken(context.Background(), "ghost", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ExchangeToken() error = %v, want ErrNotFound", err)
	}
}

func TestExchangeToken_ReservedUsername(t *testing.T) {
	svc, _, _ := newAuthTestService(t)

	_, err := svc.ExchangeToken(context.Background(), "me", "whatever")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ExchangeToken() error = %v, want ErrNotFound", err)
	}
}

func TestExchangeToken_CodeStaysValid(t *testing.T) {
	svc, _, _ := newAuthTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("setup Signup() error = %v", err)
	}

	if _, err := svc.ExchangeToken(ctx, "alice", user.ConfirmationCode); err != nil {
		t.Fatalf("first ExchangeToken() error = %v", err)
	}
	if _, err := svc.ExchangeToken(ctx, "alice", user.ConfirmationCode); err != nil {
		t.Errorf("second ExchangeToken() error = %v, want the code to stay valid", err)
	}
}

func TestGetActor_DeletedAccount(t *testing.T) {
	svc, users, _ := newAuthTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("setup Signup() error = %v", err)
	}
	if err := users.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("setup DeleteUser() error = %v", err)
	}

	_, err = svc.GetActor(ctx, user.ID)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("GetActor() error = %v, want ErrUnauthorized", err)
	}
}
