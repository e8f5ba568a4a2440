package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vidtweet/backend/internal/auth"
	"github.com/vidtweet/backend/internal/db"
	"github.com/vidtweet/backend/internal/models"
)

// PostgresCredentialStore implements auth.UserStore on top of the users
// table. Missing users surface as auth.ErrUserNotFound per the session
// manager's contract.
type PostgresCredentialStore struct {
	pool db.Pool
}

// NewPostgresCredentialStore constructs a credential store backed by PostgreSQL.
func NewPostgresCredentialStore(pool db.Pool) *PostgresCredentialStore {
	return &PostgresCredentialStore{pool: pool}
}

// FindByID loads the full user record, including credential fields.
func (s *PostgresCredentialStore) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("select credential record by id: %w", err)
	}

	return user, nil
}

// FindByLogin matches the identifier against username first, then email,
// both case-normalized.
func (s *PostgresCredentialStore) FindByLogin(ctx context.Context, identifier string) (models.User, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE username = $1 OR email = $1
        ORDER BY (username = $1) DESC
        LIMIT 1
    `, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("select credential record by login: %w", err)
	}

	return user, nil
}

// SetRefreshToken overwrites the stored refresh token; empty clears it.
func (s *PostgresCredentialStore) SetRefreshToken(ctx context.Context, userID, token string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET refresh_token = NULLIF($2, ''), updated_at = NOW()
        WHERE id = $1
    `, userID, token)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// SetPassword overwrites the stored password hash.
func (s *PostgresCredentialStore) SetPassword(ctx context.Context, userID, passwordHash string) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET password_hash = $2, updated_at = NOW()
        WHERE id = $1
    `, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}
