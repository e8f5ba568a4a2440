package models

import "time"

// User represents an account within the VidTweet platform. Password holds
// the bcrypt hash, never the plaintext, and RefreshToken mirrors the one
// refresh token currently allowed to renew this user's session.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Password     string
	AvatarURL    string
	CoverImage   string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitize returns the public projection of the user with the credential
// and session fields cleared. API responses must never carry either.
func (u User) Sanitize() User {
	u.Password = ""
	u.RefreshToken = ""
	return u
}

// Tweet is a short text post authored by a user. OwnerID never changes
// after creation.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Video stores published video metadata. The file and thumbnail live on
// the external media host; only their URLs are kept here.
type Video struct {
	ID          string
	OwnerID     string
	VideoURL    string
	Thumbnail   string
	Title       string
	Description string
	Duration    float64
	Views       int64
	IsPublic    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subscription records that SubscriberID follows the channel owned by
// ChannelID. The pair is unique.
type Subscription struct {
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// ChannelProfile is the public view of a user's channel together with
// subscription counts relative to the viewing principal.
type ChannelProfile struct {
	User            User
	SubscriberCount int64
	SubscribedCount int64
	IsSubscribed    bool
}

// WatchEntry is one row of a user's watch history joined with the video
// and its owner's public identity.
type WatchEntry struct {
	Video         Video
	OwnerUsername string
	OwnerAvatar   string
	WatchedAt     time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}
