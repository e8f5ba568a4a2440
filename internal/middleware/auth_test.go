package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vidtweet/backend/internal/auth"
)

func testVerifier(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}
	return issuer
}

func TestRequireAuth(t *testing.T) {
	issuer := testVerifier(t)
	token, _, err := issuer.Issue(auth.AccessToken, "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seenPrincipal string
	handler := RequireAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPrincipal = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if seenPrincipal != "user-1" {
		t.Fatalf("expected principal user-1, got %q", seenPrincipal)
	}

	// Cookie delivery works too.
	seenPrincipal = ""
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || seenPrincipal != "user-1" {
		t.Fatalf("expected cookie auth to succeed, got %d principal %q", rec.Code, seenPrincipal)
	}
}

func TestRequireAuthRejections(t *testing.T) {
	issuer := testVerifier(t)
	handler := RequireAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}

	// Refresh tokens must not pass as access tokens.
	refresh, _, err := issuer.Issue(auth.RefreshToken, "user-1")
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %d", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	issuer := testVerifier(t)

	var seenPrincipal string
	handler := OptionalAuth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPrincipal = PrincipalFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seenPrincipal != "" {
		t.Fatalf("expected anonymous pass-through, got %d principal %q", rec.Code, seenPrincipal)
	}

	token, _, err := issuer.Issue(auth.AccessToken, "user-9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seenPrincipal != "user-9" {
		t.Fatalf("expected principal user-9, got %q", seenPrincipal)
	}
}
