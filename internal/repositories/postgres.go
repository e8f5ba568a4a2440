package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtweet/backend/internal/db"
	"github.com/vidtweet/backend/internal/models"
)

const userColumns = `id, username, email, full_name, password_hash, avatar_url, cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.Password,
		&user.AvatarURL, &user.CoverImage, &user.RefreshToken, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, full_name, password_hash, avatar_url, cover_image_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, user.ID, user.Username, user.Email, user.FullName, user.Password, user.AvatarURL, user.CoverImage, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by identifier.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}

	return user, nil
}

// FindByUsername fetches a user by their lowercased username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by username: %w", err)
	}

	return user, nil
}

// UpdateProfile modifies the mutable identity fields and returns the
// refreshed record.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id, fullName, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        UPDATE users
        SET full_name = $2, email = $3, updated_at = $4
        WHERE id = $1
        RETURNING `+userColumns, id, fullName, email, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("update user profile: %w", err)
	}

	return user, nil
}

// UpdateAvatar replaces the avatar URL and returns the refreshed record.
func (r *PostgresUserRepository) UpdateAvatar(ctx context.Context, id, avatarURL string) (models.User, error) {
	return r.updateImage(ctx, id, "avatar_url", avatarURL)
}

// UpdateCoverImage replaces the cover image URL and returns the refreshed record.
func (r *PostgresUserRepository) UpdateCoverImage(ctx context.Context, id, coverURL string) (models.User, error) {
	return r.updateImage(ctx, id, "cover_image_url", coverURL)
}

func (r *PostgresUserRepository) updateImage(ctx context.Context, id, column, url string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	// column is one of two literals chosen by the callers above.
	user, err := scanUser(conn.QueryRow(ctx, `
        UPDATE users
        SET `+column+` = $2, updated_at = $3
        WHERE id = $1
        RETURNING `+userColumns, id, url, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("update user %s: %w", column, err)
	}

	return user, nil
}

// ChannelByUsername loads a channel profile with subscription counts and
// whether the viewer subscribes to it. viewerID may be empty for
// anonymous callers.
func (r *PostgresUserRepository) ChannelByUsername(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT u.id, u.username, u.email, u.full_name, u.avatar_url, u.cover_image_url, u.created_at, u.updated_at,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.channel_id = u.id)    AS subscriber_count,
               (SELECT COUNT(*) FROM subscriptions s WHERE s.subscriber_id = u.id) AS subscribed_count,
               EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = u.id AND s.subscriber_id = $2)
        FROM users u
        WHERE u.username = $1
    `, username, viewerID)

	var profile models.ChannelProfile
	err = row.Scan(&profile.User.ID, &profile.User.Username, &profile.User.Email, &profile.User.FullName,
		&profile.User.AvatarURL, &profile.User.CoverImage, &profile.User.CreatedAt, &profile.User.UpdatedAt,
		&profile.SubscriberCount, &profile.SubscribedCount, &profile.IsSubscribed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ChannelProfile{}, ErrNotFound
		}
		return models.ChannelProfile{}, fmt.Errorf("select channel profile: %w", err)
	}

	return profile, nil
}

// PostgresTweetRepository provides PostgreSQL-backed persistence for tweets.
type PostgresTweetRepository struct {
	pool db.Pool
}

// NewPostgresTweetRepository constructs a tweet repository backed by PostgreSQL.
func NewPostgresTweetRepository(pool db.Pool) *PostgresTweetRepository {
	return &PostgresTweetRepository{pool: pool}
}

// Create persists a new tweet.
func (r *PostgresTweetRepository) Create(ctx context.Context, tweet models.Tweet) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO tweets (id, owner_id, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
    `, tweet.ID, tweet.OwnerID, tweet.Content, tweet.CreatedAt, tweet.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert tweet: %w", err)
	}

	return nil
}

// FindByID fetches a tweet by identifier.
func (r *PostgresTweetRepository) FindByID(ctx context.Context, id string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, owner_id, content, created_at, updated_at
        FROM tweets
        WHERE id = $1
    `, id)

	var tweet models.Tweet
	if err := row.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("select tweet: %w", err)
	}

	return tweet, nil
}

// ListByOwner returns a user's tweets newest-first.
func (r *PostgresTweetRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, owner_id, content, created_at, updated_at
        FROM tweets
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT 100
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query tweets: %w", err)
	}
	defer rows.Close()

	var tweets []models.Tweet
	for rows.Next() {
		var tweet models.Tweet
		if err := rows.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tweet: %w", err)
		}
		tweets = append(tweets, tweet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tweets: %w", err)
	}

	return tweets, nil
}

// UpdateContent replaces the tweet content and returns the refreshed record.
func (r *PostgresTweetRepository) UpdateContent(ctx context.Context, id, content string) (models.Tweet, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Tweet{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        UPDATE tweets
        SET content = $2, updated_at = $3
        WHERE id = $1
        RETURNING id, owner_id, content, created_at, updated_at
    `, id, content, time.Now().UTC())

	var tweet models.Tweet
	if err := row.Scan(&tweet.ID, &tweet.OwnerID, &tweet.Content, &tweet.CreatedAt, &tweet.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Tweet{}, ErrNotFound
		}
		return models.Tweet{}, fmt.Errorf("update tweet: %w", err)
	}

	return tweet, nil
}

// Delete removes a tweet permanently.
func (r *PostgresTweetRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM tweets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tweet: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos
// and watch history.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, video_url, thumbnail_url, title, description, duration, views, is_public, created_at, updated_at`

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.VideoURL, &video.Thumbnail, &video.Title,
		&video.Description, &video.Duration, &video.Views, &video.IsPublic, &video.CreatedAt, &video.UpdatedAt)
	return video, err
}

// Create stores new video metadata.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration, views, is_public, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.VideoURL, video.Thumbnail, video.Title, video.Description,
		video.Duration, video.Views, video.IsPublic, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video by identifier.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	video, err := scanVideo(conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// ListPublic returns public videos newest-first.
func (r *PostgresVideoRepository) ListPublic(ctx context.Context) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE is_public
        ORDER BY created_at DESC
        LIMIT 100
    `)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// IncrementViews bumps the view counter.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// RecordWatch upserts a watch history entry, moving rewatches to the top.
func (r *PostgresVideoRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, watched_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, video_id)
        DO UPDATE SET watched_at = EXCLUDED.watched_at
    `, userID, videoID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert watch history: %w", err)
	}

	return nil
}

// WatchHistory returns the user's history newest-first with video and
// owner metadata.
func (r *PostgresVideoRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description,
               v.duration, v.views, v.is_public, v.created_at, v.updated_at,
               u.username, u.avatar_url, wh.watched_at
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.watched_at DESC
        LIMIT 100
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchEntry
	for rows.Next() {
		var entry models.WatchEntry
		if err := rows.Scan(&entry.Video.ID, &entry.Video.OwnerID, &entry.Video.VideoURL, &entry.Video.Thumbnail,
			&entry.Video.Title, &entry.Video.Description, &entry.Video.Duration, &entry.Video.Views,
			&entry.Video.IsPublic, &entry.Video.CreatedAt, &entry.Video.UpdatedAt,
			&entry.OwnerUsername, &entry.OwnerAvatar, &entry.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan watch entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return entries, nil
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// channel subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository
// backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Subscribe records that the subscriber follows the channel.
func (r *PostgresSubscriptionRepository) Subscribe(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO subscriptions (subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3)
    `, subscriberID, channelID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert subscription: %w", err)
	}

	return nil
}

// Unsubscribe removes the subscription if present.
func (r *PostgresSubscriptionRepository) Unsubscribe(ctx context.Context, subscriberID, channelID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions
        WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
