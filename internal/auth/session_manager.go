package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidtweet/backend/internal/models"
)

var (
	// ErrUserNotFound indicates no user matches the supplied identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials indicates the password did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken indicates no refresh token was supplied.
	ErrMissingToken = errors.New("missing refresh token")
	// ErrInvalidToken indicates the refresh token failed verification or
	// no longer matches the value on file (stale, reused, or revoked).
	ErrInvalidToken = errors.New("invalid refresh token")
	// ErrSamePassword indicates the new password equals the current one.
	ErrSamePassword = errors.New("new password must differ from the current one")
)

// UserStore persists the credential state the session manager depends on.
// Implementations report missing users with ErrUserNotFound.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	// FindByLogin matches the case-normalized identifier against username
	// first, then email.
	FindByLogin(ctx context.Context, identifier string) (models.User, error)
	// SetRefreshToken overwrites the user's stored refresh token. An empty
	// value clears it.
	SetRefreshToken(ctx context.Context, userID, token string) error
	SetPassword(ctx context.Context, userID, passwordHash string) error
}

// SessionManager orchestrates login, refresh rotation, logout and
// password changes over a user store and a token issuer.
type SessionManager struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(users UserStore, tokens *TokenIssuer) *SessionManager {
	if users == nil || tokens == nil {
		panic("auth: user store and token issuer must not be nil")
	}
	return &SessionManager{users: users, tokens: tokens}
}

// Login verifies the credentials and starts a new session lineage. The
// issued refresh token is persisted on the user record, which revokes
// renewal through any previously issued refresh token. The returned user
// is sanitized.
func (m *SessionManager) Login(ctx context.Context, identifier, password string) (models.User, models.SessionTokens, error) {
	user, err := m.users.FindByLogin(ctx, identifier)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	if !VerifyPassword(password, user.Password) {
		return models.User{}, models.SessionTokens{}, ErrInvalidCredentials
	}

	tokens, err := m.issueAndPersist(ctx, user.ID)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	return user.Sanitize(), tokens, nil
}

// Refresh exchanges a refresh token for a new pair, rotating the stored
// value. A token that verifies but no longer equals the persisted value
// fails with ErrInvalidToken.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrMissingToken
	}

	userID, err := m.tokens.Verify(RefreshToken, refreshToken)
	if err != nil {
		return models.SessionTokens{}, ErrInvalidToken
	}

	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.SessionTokens{}, ErrInvalidToken
		}
		return models.SessionTokens{}, err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return models.SessionTokens{}, ErrInvalidToken
	}

	return m.issueAndPersist(ctx, user.ID)
}

// Logout clears the stored refresh token. Logging out a user with no
// active session is not an error.
func (m *SessionManager) Logout(ctx context.Context, userID string) error {
	if err := m.users.SetRefreshToken(ctx, userID, ""); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// ChangePassword re-hashes and persists the password after verifying the
// old one. Existing sessions stay valid; revocation remains an explicit
// logout concern.
func (m *SessionManager) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(oldPassword, user.Password) {
		return ErrInvalidCredentials
	}

	if newPassword == oldPassword {
		return ErrSamePassword
	}

	hashed, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := m.users.SetPassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("persist password: %w", err)
	}

	return nil
}

func (m *SessionManager) issueAndPersist(ctx context.Context, userID string) (models.SessionTokens, error) {
	access, accessExpires, err := m.tokens.Issue(AccessToken, userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refresh, refreshExpires, err := m.tokens.Issue(RefreshToken, userID)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if err := m.users.SetRefreshToken(ctx, userID, refresh); err != nil {
		return models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExpires,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExpires,
	}, nil
}
