package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vidtweet/backend/internal/auth"
	"github.com/vidtweet/backend/internal/logging"
)

type principalKey struct{}

// WithPrincipal stores the authenticated user identifier on the context.
func WithPrincipal(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, userID)
}

// PrincipalFromContext returns the authenticated user identifier, or ""
// for anonymous requests.
func PrincipalFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(principalKey{}).(string); ok {
		return id
	}
	return ""
}

// TokenVerifier validates a session token and returns the embedded user
// identifier.
type TokenVerifier interface {
	Verify(class auth.TokenClass, tokenString string) (string, error)
}

// RequireAuth rejects requests that do not carry a valid access token in
// the Authorization header or the access_token cookie.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				unauthorized(w, r, "missing access token")
				return
			}

			userID, err := verifier.Verify(auth.AccessToken, tokenString)
			if err != nil {
				logging.FromContext(r.Context()).Warn("access token rejected", "error", err)
				unauthorized(w, r, "invalid access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), userID)))
		})
	}
}

// OptionalAuth attaches the principal when a valid access token is
// present but lets anonymous requests through.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString := bearerToken(r); tokenString != "" {
				if userID, err := verifier.Verify(auth.AccessToken, tokenString); err == nil {
					r = r.WithContext(WithPrincipal(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.FromContext(r.Context()).Error("encode unauthorized response", "error", err)
	}
}
