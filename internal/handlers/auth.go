package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtweet/backend/internal/auth"
	"github.com/vidtweet/backend/internal/logging"
	"github.com/vidtweet/backend/internal/middleware"
	"github.com/vidtweet/backend/internal/models"
	"github.com/vidtweet/backend/internal/repositories"
)

// AuthHandler implements registration and session lifecycle endpoints.
type AuthHandler struct {
	Users         UserStore
	Sessions      SessionManager
	Limiter       RateLimiter
	SecureCookies bool
	NowFunc       func() time.Time
}

// Register handles POST /api/v1/auth/register requests.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("user store unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "registration unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if req.Username == "" || req.Email == "" || req.FullName == "" || req.Password == "" || req.Avatar == "" {
		logger.Warn("register missing fields", "username", req.Username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username, email, fullName, password and avatar are required"})
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		logger.Warn("register invalid email", "email", req.Email, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
		return
	}

	if len(req.Password) < 8 {
		logger.Warn("register password too short", "username", req.Username)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	now := h.now()
	user := models.User{
		ID:         uuid.NewString(),
		Username:   req.Username,
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   hashed,
		AvatarURL:  req.Avatar,
		CoverImage: req.CoverImage,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("register conflict", "username", req.Username)
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "username or email already taken"})
			return
		}
		logger.Error("register failed to create user", "error", err, "username", req.Username)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create account"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, userResponse{User: userPayload(user)})
}

// Login handles POST /api/v1/auth/login requests.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "authentication services unavailable"})
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	identifier := firstNonEmpty(req.Identifier, req.Username, req.Email)
	if identifier == "" || req.Password == "" {
		logger.Warn("login missing credentials")
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "identifier and password are required"})
		return
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			logger.Warn("login unknown identifier")
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			logger.Warn("login password mismatch")
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		default:
			logger.Error("login failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
		}
		return
	}

	payload := userPayload(user)
	h.setSessionCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{User: &payload, Tokens: tokensPayload(tokens)})
}

// Refresh exchanges a refresh token for a new session pair. The token is
// read from the refresh_token cookie, with a JSON body fallback for
// non-browser clients.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return
	}

	refreshToken := ""
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		refreshToken = cookie.Value
	}
	if refreshToken == "" && r.Body != nil {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = strings.TrimSpace(req.RefreshToken)
		}
	}

	tokens, err := h.Sessions.Refresh(ctx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingToken):
			logger.Warn("refresh missing token")
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "refresh token is required"})
		case errors.Is(err, auth.ErrInvalidToken):
			logger.Warn("refresh token rejected")
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid refresh token"})
		default:
			logger.Error("refresh failed", "error", err)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to refresh session"})
		}
		return
	}

	h.setSessionCookies(w, tokens)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{Tokens: tokensPayload(tokens)})
}

// Logout handles POST /api/v1/auth/logout for the authenticated user.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	if err := h.Sessions.Logout(ctx, userID); err != nil {
		logger.Error("logout failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to log out"})
		return
	}

	h.clearSessionCookies(w)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "logged out"})
}

// ChangePassword handles POST /api/v1/auth/change-password for the
// authenticated user.
func (h AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid change-password payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "oldPassword and newPassword are required"})
		return
	}

	if len(req.NewPassword) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	if err := h.Sessions.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			logger.Warn("change-password old password mismatch", "userId", userID)
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		case errors.Is(err, auth.ErrSamePassword):
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "new password must differ from the current one"})
		default:
			logger.Error("change-password failed", "error", err, "userId", userID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to change password"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (h AuthHandler) setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		Path:     "/api/v1/auth",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

type registerRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Password   string `json:"password"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userResponse struct {
	User userJSON `json:"user"`
}

type sessionResponse struct {
	User   *userJSON  `json:"user,omitempty"`
	Tokens tokensJSON `json:"tokens"`
}

// userJSON is the public projection of a user. Credential and session
// fields have no representation here at all.
type userJSON struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type tokensJSON struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

func userPayload(user models.User) userJSON {
	return userJSON{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FullName:   user.FullName,
		Avatar:     user.AvatarURL,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func tokensPayload(tokens models.SessionTokens) tokensJSON {
	return tokensJSON{
		AccessToken:      tokens.AccessToken,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshToken:     tokens.RefreshToken,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
