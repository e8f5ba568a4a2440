package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtweet/backend/internal/auth"
	"github.com/vidtweet/backend/internal/logging"
	"github.com/vidtweet/backend/internal/middleware"
	"github.com/vidtweet/backend/internal/models"
	"github.com/vidtweet/backend/internal/repositories"
)

// TweetHandler implements tweet CRUD endpoints. Mutations are restricted
// to the owning user.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

// Collection handles POST and GET /api/v1/tweets.
func (h TweetHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ByID handles PATCH and DELETE /api/v1/tweets/{id}.
func (h TweetHandler) ByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPatch:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h TweetHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		logger.Error("create tweet failed", "error", err, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to create tweet"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweetResponse{Tweet: tweetPayload(tweet)})
}

func (h TweetHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	ownerID := strings.TrimSpace(r.URL.Query().Get("user"))
	if ownerID == "" {
		ownerID = middleware.PrincipalFromContext(ctx)
	}
	if ownerID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "user query parameter is required"})
		return
	}

	tweets, err := h.Tweets.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Error("list tweets failed", "error", err, "ownerId", ownerID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list tweets"})
		return
	}

	payload := make([]tweetJSON, 0, len(tweets))
	for _, tweet := range tweets {
		payload = append(payload, tweetPayload(tweet))
	}

	respondJSON(ctx, w, http.StatusOK, tweetListResponse{Tweets: payload})
}

func (h TweetHandler) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	tweetID := r.PathValue("id")

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	existing, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "tweet not found"})
			return
		}
		logger.Error("load tweet failed", "error", err, "tweetId", tweetID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load tweet"})
		return
	}

	// Ownership failures are explicit 403s, never hidden as 404.
	if err := auth.Authorize(userID, existing.OwnerID); err != nil {
		logger.Warn("tweet update denied", "tweetId", tweetID, "userId", userID)
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "you do not own this tweet"})
		return
	}

	updated, err := h.Tweets.UpdateContent(ctx, tweetID, req.Content)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "tweet not found"})
			return
		}
		logger.Error("update tweet failed", "error", err, "tweetId", tweetID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to update tweet"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, tweetResponse{Tweet: tweetPayload(updated)})
}

func (h TweetHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	userID := middleware.PrincipalFromContext(ctx)
	if userID == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	tweetID := r.PathValue("id")

	existing, err := h.Tweets.FindByID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "tweet not found"})
			return
		}
		logger.Error("load tweet failed", "error", err, "tweetId", tweetID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load tweet"})
		return
	}

	if err := auth.Authorize(userID, existing.OwnerID); err != nil {
		logger.Warn("tweet delete denied", "tweetId", tweetID, "userId", userID)
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "you do not own this tweet"})
		return
	}

	if err := h.Tweets.Delete(ctx, tweetID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "tweet not found"})
			return
		}
		logger.Error("delete tweet failed", "error", err, "tweetId", tweetID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to delete tweet"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content"`
}

type tweetResponse struct {
	Tweet tweetJSON `json:"tweet"`
}

type tweetListResponse struct {
	Tweets []tweetJSON `json:"tweets"`
}

type tweetJSON struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func tweetPayload(tweet models.Tweet) tweetJSON {
	return tweetJSON{
		ID:        tweet.ID,
		OwnerID:   tweet.OwnerID,
		Content:   tweet.Content,
		CreatedAt: tweet.CreatedAt,
		UpdatedAt: tweet.UpdatedAt,
	}
}
