package repositories

import (
	"context"

	"github.com/vidtweet/backend/internal/models"
)

// TweetRepository defines the data access contract for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	// ListByOwner returns a user's tweets newest-first.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}
