package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtweet/backend/internal/models"
)

func testManager(t *testing.T) (*SessionManager, *InMemoryUserStore) {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}
	store := NewInMemoryUserStore()
	return NewSessionManager(store, issuer), store
}

func seedUser(t *testing.T, store *InMemoryUserStore, password string) models.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		ID:       "user-1",
		Username: "ana",
		Email:    "a@x.com",
		FullName: "Ana",
		Password: hash,
	}
	store.Put(user)
	return user
}

func TestSessionManagerLogin(t *testing.T) {
	manager, store := testManager(t)
	seedUser(t, store, "p1")

	user, tokens, err := manager.Login(context.Background(), "ana", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", tokens)
	}
	if user.Password != "" || user.RefreshToken != "" {
		t.Fatalf("expected sanitized user, got %+v", user)
	}
	if store.StoredRefreshToken("user-1") != tokens.RefreshToken {
		t.Fatal("expected issued refresh token to be persisted")
	}

	// Same account via email.
	if _, _, err := manager.Login(context.Background(), "a@x.com", "p1"); err != nil {
		t.Fatalf("login by email: %v", err)
	}
}

func TestSessionManagerLoginFailures(t *testing.T) {
	manager, store := testManager(t)
	seedUser(t, store, "p1")

	if _, _, err := manager.Login(context.Background(), "nobody", "p1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "ana", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionManagerRefreshRotation(t *testing.T) {
	manager, store := testManager(t)
	seedUser(t, store, "p1")

	_, tokens, err := manager.Login(context.Background(), "ana", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}
	if store.StoredRefreshToken("user-1") != rotated.RefreshToken {
		t.Fatal("expected rotated token to be persisted")
	}

	// The pre-rotation token verifies but no longer matches the stored
	// value, so a second use must fail.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for rotated-out token, got %v", err)
	}
}

func TestSessionManagerRefreshFailures(t *testing.T) {
	manager, store := testManager(t)
	seedUser(t, store, "p1")

	if _, err := manager.Refresh(context.Background(), ""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if _, err := manager.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestSessionManagerLogout(t *testing.T) {
	manager, store := testManager(t)
	seedUser(t, store, "p1")

	_, tokens, err := manager.Login(context.Background(), "ana", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.Logout(context.Background(), "user-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if store.StoredRefreshToken("user-1") != "" {
		t.Fatal("expected stored refresh token to be cleared")
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}

	// Idempotent: no active session is not an error, nor is an unknown user.
	if err := manager.Logout(context.Background(), "user-1"); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := manager.Logout(context.Background(), "missing"); err != nil {
		t.Fatalf("logout of unknown user: %v", err)
	}
}

func TestSessionManagerChangePassword(t *testing.T) {
	manager, store := testManager(t)
	seedUser(t, store, "p1")

	if err := manager.ChangePassword(context.Background(), "missing", "p1", "p2"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := manager.ChangePassword(context.Background(), "user-1", "wrong", "p2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := manager.ChangePassword(context.Background(), "user-1", "p1", "p1"); !errors.Is(err, ErrSamePassword) {
		t.Fatalf("expected ErrSamePassword, got %v", err)
	}

	_, tokens, err := manager.Login(context.Background(), "ana", "p1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := manager.ChangePassword(context.Background(), "user-1", "p1", "p2"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	// Changing the password does not revoke the session issued before it.
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != nil {
		t.Fatalf("refresh after password change: %v", err)
	}

	if _, _, err := manager.Login(context.Background(), "ana", "p1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}
	if _, _, err := manager.Login(context.Background(), "ana", "p2"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
