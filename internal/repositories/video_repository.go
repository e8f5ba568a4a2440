package repositories

import (
	"context"

	"github.com/vidtweet/backend/internal/models"
)

// VideoRepository defines the data access contract for published videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	// ListPublic returns public videos newest-first.
	ListPublic(ctx context.Context) ([]models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	// RecordWatch upserts a watch history entry for the user.
	RecordWatch(ctx context.Context, userID, videoID string) error
	// WatchHistory returns the user's history newest-first, joined with
	// video and owner metadata.
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
}

// SubscriptionRepository defines the data access contract for channel
// subscriptions.
type SubscriptionRepository interface {
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}
