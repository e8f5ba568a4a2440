package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/vidtweet/backend/internal/models"
	"github.com/vidtweet/backend/internal/repositories"
)

type inMemoryTweets struct {
	tweets map[string]models.Tweet
}

func newInMemoryTweets() *inMemoryTweets {
	return &inMemoryTweets{tweets: make(map[string]models.Tweet)}
}

func (s *inMemoryTweets) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *inMemoryTweets) FindByID(_ context.Context, id string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	return tweet, nil
}

func (s *inMemoryTweets) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	var out []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *inMemoryTweets) UpdateContent(_ context.Context, id, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	tweet.UpdatedAt = time.Now().UTC()
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *inMemoryTweets) Delete(_ context.Context, id string) error {
	if _, ok := s.tweets[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}

func TestTweetHandlerCreate(t *testing.T) {
	store := newInMemoryTweets()
	handler := TweetHandler{Tweets: store}

	body, err := json.Marshal(tweetRequest{Content: "hello world"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := authenticatedRequest(http.MethodPost, "/api/v1/tweets", body, "user-1")
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp tweetResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Tweet.OwnerID != "user-1" || resp.Tweet.Content != "hello world" {
		t.Fatalf("unexpected tweet payload: %+v", resp.Tweet)
	}
	if _, err := store.FindByID(context.Background(), resp.Tweet.ID); err != nil {
		t.Fatalf("expected tweet to be stored: %v", err)
	}
}

func TestTweetHandlerCreateRejections(t *testing.T) {
	handler := TweetHandler{Tweets: newInMemoryTweets()}

	t.Run("empty content", func(t *testing.T) {
		body, err := json.Marshal(tweetRequest{Content: "   "})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		req := authenticatedRequest(http.MethodPost, "/api/v1/tweets", body, "user-1")
		rec := httptest.NewRecorder()

		handler.Collection(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		body, err := json.Marshal(tweetRequest{Content: "hello"})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/tweets", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.Collection(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
		}
	})
}

func TestTweetHandlerListNewestFirst(t *testing.T) {
	store := newInMemoryTweets()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store.tweets["t1"] = models.Tweet{ID: "t1", OwnerID: "user-1", Content: "first", CreatedAt: base}
	store.tweets["t2"] = models.Tweet{ID: "t2", OwnerID: "user-1", Content: "second", CreatedAt: base.Add(time.Minute)}
	store.tweets["t3"] = models.Tweet{ID: "t3", OwnerID: "user-2", Content: "other owner", CreatedAt: base.Add(2 * time.Minute)}

	handler := TweetHandler{Tweets: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tweets?user=user-1", nil)
	rec := httptest.NewRecorder()

	handler.Collection(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp tweetListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tweets) != 2 {
		t.Fatalf("expected 2 tweets, got %d", len(resp.Tweets))
	}
	if resp.Tweets[0].ID != "t2" || resp.Tweets[1].ID != "t1" {
		t.Fatalf("expected newest-first ordering, got %+v", resp.Tweets)
	}
}

func TestTweetHandlerUpdateOwnership(t *testing.T) {
	store := newInMemoryTweets()
	store.tweets["t1"] = models.Tweet{ID: "t1", OwnerID: "user-1", Content: "original"}

	handler := TweetHandler{Tweets: store}

	body, err := json.Marshal(tweetRequest{Content: "edited"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	t.Run("non-owner forbidden", func(t *testing.T) {
		req := authenticatedRequest(http.MethodPatch, "/api/v1/tweets/t1", body, "user-2")
		req.SetPathValue("id", "t1")
		rec := httptest.NewRecorder()

		handler.ByID(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
		}
		if store.tweets["t1"].Content != "original" {
			t.Fatal("expected tweet to be unchanged")
		}
	})

	t.Run("owner succeeds", func(t *testing.T) {
		req := authenticatedRequest(http.MethodPatch, "/api/v1/tweets/t1", body, "user-1")
		req.SetPathValue("id", "t1")
		rec := httptest.NewRecorder()

		handler.ByID(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		if store.tweets["t1"].Content != "edited" {
			t.Fatal("expected tweet content to be updated")
		}
	})

	t.Run("missing tweet", func(t *testing.T) {
		req := authenticatedRequest(http.MethodPatch, "/api/v1/tweets/ghost", body, "user-1")
		req.SetPathValue("id", "ghost")
		rec := httptest.NewRecorder()

		handler.ByID(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestTweetHandlerDeleteOwnership(t *testing.T) {
	store := newInMemoryTweets()
	store.tweets["t1"] = models.Tweet{ID: "t1", OwnerID: "user-1", Content: "keep me"}

	handler := TweetHandler{Tweets: store}

	t.Run("non-owner forbidden", func(t *testing.T) {
		req := authenticatedRequest(http.MethodDelete, "/api/v1/tweets/t1", nil, "user-2")
		req.SetPathValue("id", "t1")
		rec := httptest.NewRecorder()

		handler.ByID(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
		}
		if _, ok := store.tweets["t1"]; !ok {
			t.Fatal("expected tweet to survive")
		}
	})

	t.Run("owner succeeds", func(t *testing.T) {
		req := authenticatedRequest(http.MethodDelete, "/api/v1/tweets/t1", nil, "user-1")
		req.SetPathValue("id", "t1")
		rec := httptest.NewRecorder()

		handler.ByID(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}
		if _, ok := store.tweets["t1"]; ok {
			t.Fatal("expected tweet to be deleted")
		}
	})
}
