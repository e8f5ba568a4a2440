package handlers

import (
	"net/http"

	"github.com/vidtweet/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	requireAuth := middleware.RequireAuth(deps.Verifier)
	optionalAuth := middleware.OptionalAuth(deps.Verifier)

	health := HealthHandler{}
	auth := AuthHandler{
		Users:         deps.Users,
		Sessions:      deps.Sessions,
		Limiter:       deps.AuthLimiter,
		SecureCookies: deps.SecureCookies,
	}
	users := UserHandler{Users: deps.Users, Channels: deps.Channels, Videos: deps.Videos, Media: deps.Media}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	tweets := TweetHandler{Tweets: deps.Tweets}
	videos := VideoHandler{Videos: deps.Videos}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/auth/register", auth.Register)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.Handle("/api/v1/auth/logout", requireAuth(http.HandlerFunc(auth.Logout)))
	mux.Handle("/api/v1/auth/change-password", requireAuth(http.HandlerFunc(auth.ChangePassword)))

	mux.Handle("/api/v1/users/me", requireAuth(http.HandlerFunc(users.Me)))
	mux.Handle("/api/v1/users/me/avatar", requireAuth(http.HandlerFunc(users.UpdateAvatar)))
	mux.Handle("/api/v1/users/me/cover-image", requireAuth(http.HandlerFunc(users.UpdateCoverImage)))
	mux.Handle("/api/v1/users/me/history", requireAuth(http.HandlerFunc(users.WatchHistory)))
	mux.Handle("/api/v1/channels/{username}", optionalAuth(http.HandlerFunc(users.Channel)))

	mux.Handle("/api/v1/subscriptions", requireAuth(http.HandlerFunc(subscriptions.Subscribe)))
	mux.Handle("/api/v1/subscriptions/{channelId}", requireAuth(http.HandlerFunc(subscriptions.Unsubscribe)))

	mux.Handle("/api/v1/tweets", optionalAuth(http.HandlerFunc(tweets.Collection)))
	mux.Handle("/api/v1/tweets/{id}", requireAuth(http.HandlerFunc(tweets.ByID)))

	mux.Handle("/api/v1/videos", optionalAuth(http.HandlerFunc(videos.Collection)))
	mux.Handle("/api/v1/videos/{id}", optionalAuth(http.HandlerFunc(videos.Get)))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Sessions      SessionManager
	Tweets        TweetStore
	Videos        VideoStore
	Subscriptions SubscriptionStore
	Channels      ChannelProvider
	Media         MediaStorage
	Verifier      middleware.TokenVerifier
	AuthLimiter   RateLimiter
	SecureCookies bool
}
