package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired indicates the token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed indicates a bad signature, wrong signing method,
	// or missing claims.
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenClass selects the signing secret and lifetime used for a token.
type TokenClass int

const (
	// AccessToken authorizes requests for a single short session window.
	AccessToken TokenClass = iota
	// RefreshToken renews a session and must also match the value
	// persisted on the user record.
	RefreshToken
)

// TokenConfig carries the signing secrets and lifetimes for both token
// classes. Injected at construction, never read from the environment by
// the issuer itself.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// TokenIssuer mints and verifies signed, self-contained session tokens.
// Access and refresh tokens use separate secrets so one class can never
// be replayed as the other.
type TokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer from the provided configuration.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("auth: token secrets must be configured")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// Issue signs a token of the given class for the user, returning the
// token string and its expiry.
func (i *TokenIssuer) Issue(class TokenClass, userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("auth: user id must be provided")
	}

	secret, ttl := i.secretFor(class)
	now := i.now().UTC()
	expires := now.Add(ttl)

	// The jti keeps tokens minted within the same second distinct, so
	// rotation always produces a new refresh token value.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expires, nil
}

// Verify checks the signature and expiry of a token of the given class
// and returns the embedded user identifier. Expired tokens fail with
// ErrTokenExpired, everything else invalid with ErrTokenMalformed.
func (i *TokenIssuer) Verify(class TokenClass, tokenString string) (string, error) {
	secret, _ := i.secretFor(class)

	parsed := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return i.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	if !token.Valid || parsed.UserID == "" {
		return "", ErrTokenMalformed
	}

	return parsed.UserID, nil
}

func (i *TokenIssuer) secretFor(class TokenClass) ([]byte, time.Duration) {
	if class == RefreshToken {
		return i.cfg.RefreshSecret, i.cfg.RefreshTTL
	}
	return i.cfg.AccessSecret, i.cfg.AccessTTL
}
