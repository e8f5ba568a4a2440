package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtweet/backend/internal/repositories"
)

type inMemorySubscriptions struct {
	channels map[string]bool
	pairs    map[[2]string]bool
}

func newInMemorySubscriptions(channelIDs ...string) *inMemorySubscriptions {
	channels := make(map[string]bool, len(channelIDs))
	for _, id := range channelIDs {
		channels[id] = true
	}
	return &inMemorySubscriptions{channels: channels, pairs: make(map[[2]string]bool)}
}

func (s *inMemorySubscriptions) Subscribe(_ context.Context, subscriberID, channelID string) error {
	if !s.channels[channelID] {
		return repositories.ErrNotFound
	}
	key := [2]string{subscriberID, channelID}
	if s.pairs[key] {
		return repositories.ErrConflict
	}
	s.pairs[key] = true
	return nil
}

func (s *inMemorySubscriptions) Unsubscribe(_ context.Context, subscriberID, channelID string) error {
	key := [2]string{subscriberID, channelID}
	if !s.pairs[key] {
		return repositories.ErrNotFound
	}
	delete(s.pairs, key)
	return nil
}

func TestSubscriptionHandlerSubscribe(t *testing.T) {
	store := newInMemorySubscriptions("channel-1")
	handler := SubscriptionHandler{Subscriptions: store}

	subscribe := func(t *testing.T, userID, channelID string) *httptest.ResponseRecorder {
		t.Helper()

		body, err := json.Marshal(subscribeRequest{ChannelID: channelID})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		req := authenticatedRequest(http.MethodPost, "/api/v1/subscriptions", body, userID)
		rec := httptest.NewRecorder()
		handler.Subscribe(rec, req)
		return rec
	}

	t.Run("success", func(t *testing.T) {
		rec := subscribe(t, "user-1", "channel-1")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
		}
		if !store.pairs[[2]string{"user-1", "channel-1"}] {
			t.Fatal("expected subscription to be stored")
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := subscribe(t, "user-1", "channel-1")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
		}
	})

	t.Run("unknown channel", func(t *testing.T) {
		rec := subscribe(t, "user-1", "ghost")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("own channel", func(t *testing.T) {
		rec := subscribe(t, "channel-1", "channel-1")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
		}
	})
}

func TestSubscriptionHandlerUnsubscribe(t *testing.T) {
	store := newInMemorySubscriptions("channel-1")
	store.pairs[[2]string{"user-1", "channel-1"}] = true

	handler := SubscriptionHandler{Subscriptions: store}

	t.Run("success", func(t *testing.T) {
		req := authenticatedRequest(http.MethodDelete, "/api/v1/subscriptions/channel-1", nil, "user-1")
		req.SetPathValue("channelId", "channel-1")
		rec := httptest.NewRecorder()

		handler.Unsubscribe(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		if store.pairs[[2]string{"user-1", "channel-1"}] {
			t.Fatal("expected subscription to be removed")
		}
	})

	t.Run("not subscribed", func(t *testing.T) {
		req := authenticatedRequest(http.MethodDelete, "/api/v1/subscriptions/channel-1", nil, "user-1")
		req.SetPathValue("channelId", "channel-1")
		rec := httptest.NewRecorder()

		handler.Unsubscribe(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
		}
	})
}
