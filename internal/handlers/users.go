package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtweet/backend/internal/logging"
	"github.com/vidtweet/backend/internal/middleware"
	"github.com/vidtweet/backend/internal/models"
	"github.com/vidtweet/backend/internal/repositories"
)

// maxUploadBytes bounds avatar and cover image uploads.
const maxUploadBytes = 10 << 20

// UserHandler implements profile, channel and watch history endpoints.
type UserHandler struct {
	Users    UserStore
	Channels ChannelProvider
	Videos   VideoStore
	Media    MediaStorage
}

// Me handles GET and PATCH /api/v1/users/me.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.currentProfile(w, r)
	case http.MethodPatch:
		h.updateProfile(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h UserHandler) currentProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	user, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		logger.Error("load current profile", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponse{User: userPayload(user)})
}

func (h UserHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FullName == "" || req.Email == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "fullName and email are required"})
		return
	}

	user, err := h.Users.UpdateProfile(ctx, userID, req.FullName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
		case errors.Is(err, repositories.ErrConflict):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "email already taken"})
		default:
			logger.Error("update profile", "error", err, "userId", userID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update profile"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponse{User: userPayload(user)})
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar multipart uploads.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.Users.UpdateAvatar)
}

// UpdateCoverImage handles PATCH /api/v1/users/me/cover-image multipart uploads.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.Users.UpdateCoverImage)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string, persist func(ctx context.Context, id, url string) (models.User, error)) {
	if r.Method != http.MethodPatch {
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

	if h.Media == nil {
		logger.Error("media storage unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "media storage unavailable"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile(field)
	if err != nil {
		logger.Warn("missing upload", "field", field, "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("%s file is required", field)})
		return
	}
	defer file.Close()

	name := fmt.Sprintf("%s/%s/%s%s", field, userID, uuid.NewString(), filepath.Ext(header.Filename))
	url, err := h.Media.Save(ctx, name, file)
	if err != nil {
		logger.Error("media upload failed", "error", err, "field", field, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to store media"})
		return
	}

	user, err := persist(ctx, userID, url)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		// The media is uploaded but the record update failed; the caller
		// must treat profile state as unknown and re-query.
		logger.Error("persist media url", "error", err, "field", field, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update profile"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, userResponse{User: userPayload(user)})
}

// Channel handles GET /api/v1/channels/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	ctx, span := logging.StartSpan(ctx, "channel_profile")
	profile, err := h.Channels.Lookup(ctx, username, middleware.PrincipalFromContext(ctx))
	span.End()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "channel not found"})
			return
		}
		logger.Error("channel lookup failed", "error", err, "username", username)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load channel"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, channelResponse{
		User:            userPayload(profile.User),
		SubscriberCount: profile.SubscriberCount,
		SubscribedCount: profile.SubscribedCount,
		IsSubscribed:    profile.IsSubscribed,
	})
}

// WatchHistory handles GET /api/v1/users/me/history.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
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

	ctx, span := logging.StartSpan(ctx, "watch_history")
	entries, err := h.Videos.WatchHistory(ctx, userID)
	span.End()
	if err != nil {
		logger.Error("watch history failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load watch history"})
		return
	}

	payload := make([]watchEntryJSON, 0, len(entries))
	for _, entry := range entries {
		payload = append(payload, watchEntryJSON{
			Video:         videoPayload(entry.Video),
			OwnerUsername: entry.OwnerUsername,
			OwnerAvatar:   entry.OwnerAvatar,
			WatchedAt:     entry.WatchedAt,
		})
	}

	respondJSON(ctx, w, http.StatusOK, watchHistoryResponse{History: payload})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type channelResponse struct {
	User            userJSON `json:"user"`
	SubscriberCount int64    `json:"subscriberCount"`
	SubscribedCount int64    `json:"subscribedCount"`
	IsSubscribed    bool     `json:"isSubscribed"`
}

type watchHistoryResponse struct {
	History []watchEntryJSON `json:"history"`
}

type watchEntryJSON struct {
	Video         videoJSON `json:"video"`
	OwnerUsername string    `json:"ownerUsername"`
	OwnerAvatar   string    `json:"ownerAvatar"`
	WatchedAt     time.Time `json:"watchedAt"`
}
