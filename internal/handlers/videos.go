package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtweet/backend/internal/logging"
	"github.com/vidtweet/backend/internal/middleware"
	"github.com/vidtweet/backend/internal/models"
	"github.com/vidtweet/backend/internal/repositories"
)

// VideoHandler implements video publishing and playback-metadata endpoints.
type VideoHandler struct {
	Videos  VideoStore
	NowFunc func() time.Time
}

// Collection handles POST and GET /api/v1/videos.
func (h VideoHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.publish(w, r)
	case http.MethodGet:
		h.feed(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h VideoHandler) publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req publishVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.VideoURL == "" || req.Thumbnail == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title, videoUrl and thumbnail are required"})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	now := h.now()
	video := models.Video{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		VideoURL:    req.VideoURL,
		Thumbnail:   req.Thumbnail,
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("publish video failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to publish video"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, videoResponse{Video: videoPayload(video)})
}

func (h VideoHandler) feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videos, err := h.Videos.ListPublic(ctx)
	if err != nil {
		logger.Error("list videos failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list videos"})
		return
	}

	payload := make([]videoJSON, 0, len(videos))
	for _, video := range videos {
		payload = append(payload, videoPayload(video))
	}

	respondJSON(ctx, w, http.StatusOK, videoListResponse{Videos: payload})
}

// Get handles GET /api/v1/videos/{id}. Fetching a video counts a view
// and, for authenticated callers, records a watch history entry.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	videoID := r.PathValue("id")

	video, err := h.Videos.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logger.Error("load video failed", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load video"})
		return
	}

	if err := h.Videos.IncrementViews(ctx, videoID); err != nil {
		logger.Warn("increment views failed", "error", err, "videoId", videoID)
	} else {
		video.Views++
	}

	if userID := middleware.PrincipalFromContext(ctx); userID != "" {
		if err := h.Videos.RecordWatch(ctx, userID, videoID); err != nil {
			logger.Warn("record watch failed", "error", err, "videoId", videoID, "userId", userID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, videoResponse{Video: videoPayload(video)})
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type publishVideoRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	VideoURL    string  `json:"videoUrl"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration"`
	IsPublic    *bool   `json:"isPublic"`
}

type videoResponse struct {
	Video videoJSON `json:"video"`
}

type videoListResponse struct {
	Videos []videoJSON `json:"videos"`
}

type videoJSON struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	VideoURL    string    `json:"videoUrl"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func videoPayload(video models.Video) videoJSON {
	return videoJSON{
		ID:          video.ID,
		OwnerID:     video.OwnerID,
		VideoURL:    video.VideoURL,
		Thumbnail:   video.Thumbnail,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublic:    video.IsPublic,
		CreatedAt:   video.CreatedAt,
		UpdatedAt:   video.UpdatedAt,
	}
}
