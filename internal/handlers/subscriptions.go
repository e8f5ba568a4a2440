package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtweet/backend/internal/logging"
	"github.com/vidtweet/backend/internal/middleware"
	"github.com/vidtweet/backend/internal/repositories"
)

// SubscriptionHandler implements channel subscribe/unsubscribe endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
}

// Subscribe handles POST /api/v1/subscriptions.
func (h SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
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

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid subscribe payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	req.ChannelID = strings.TrimSpace(req.ChannelID)
	if req.ChannelID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "channelId is required"})
		return
	}

	if req.ChannelID == userID {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "cannot subscribe to your own channel"})
		return
	}

	if err := h.Subscriptions.Subscribe(ctx, userID, req.ChannelID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrConflict):
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "already subscribed"})
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "channel not found"})
		default:
			logger.Error("subscribe failed", "error", err, "channelId", req.ChannelID, "userId", userID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to subscribe"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

// Unsubscribe handles DELETE /api/v1/subscriptions/{channelId}.
func (h SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
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

	channelID := r.PathValue("channelId")
	if channelID == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "channelId is required"})
		return
	}

	if err := h.Subscriptions.Unsubscribe(ctx, userID, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "subscription not found"})
			return
		}
		logger.Error("unsubscribe failed", "error", err, "channelId", channelID, "userId", userID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to unsubscribe"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

type subscribeRequest struct {
	ChannelID string `json:"channelId"`
}
