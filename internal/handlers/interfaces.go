package handlers

import (
	"context"
	"io"

	"github.com/vidtweet/backend/internal/models"
)

// UserStore captures the persistence operations required by the auth and
// profile handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) (models.User, error)
	UpdateCoverImage(ctx context.Context, id, coverURL string) (models.User, error)
}

// SessionManager drives the credential and session-token lifecycle.
type SessionManager interface {
	Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

// TweetStore captures persistence for tweet workflows.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id, content string) (models.Tweet, error)
	Delete(ctx context.Context, id string) error
}

// VideoStore captures persistence for video metadata and watch history.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	ListPublic(ctx context.Context) ([]models.Video, error)
	IncrementViews(ctx context.Context, id string) error
	RecordWatch(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error)
}

// SubscriptionStore captures persistence for channel subscriptions.
type SubscriptionStore interface {
	Subscribe(ctx context.Context, subscriberID, channelID string) error
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}

// ChannelProvider resolves public channel profiles.
type ChannelProvider interface {
	Lookup(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

// MediaStorage hosts uploaded media and returns a durable URL.
type MediaStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
