package app

import (
	"context"
	"time"

	"github.com/vidtweet/backend/internal/auth"
	"github.com/vidtweet/backend/internal/channels"
	"github.com/vidtweet/backend/internal/config"
	"github.com/vidtweet/backend/internal/db"
	"github.com/vidtweet/backend/internal/handlers"
	"github.com/vidtweet/backend/internal/middleware"
	"github.com/vidtweet/backend/internal/models"
	"github.com/vidtweet/backend/internal/repositories"
	"github.com/vidtweet/backend/internal/storage"
)

// channelLookup adapts the user repository to the channels.Provider
// interface so profile lookups can sit behind the TTL cache.
type channelLookup struct {
	users *repositories.PostgresUserRepository
}

func (l channelLookup) Lookup(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	return l.users.ChannelByUsername(ctx, username, viewerID)
}

// buildDependencies wires together concrete implementations used by the HTTP
// handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		return handlers.Dependencies{}, err
	}

	media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	users := repositories.NewPostgresUserRepository(pool)
	credentials := repositories.NewPostgresCredentialStore(pool)

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      auth.NewSessionManager(credentials, issuer),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Channels:      channels.NewCachingProvider(channelLookup{users: users}, cfg.ChannelCacheTTL),
		Media:         media,
		Verifier:      issuer,
		AuthLimiter:   middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
		SecureCookies: cfg.SecureCookies,
	}

	return deps, nil
}
