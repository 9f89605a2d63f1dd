package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	redisclient "github.com/bizzyglass/bizzyglass-backend/pkg/redis"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	AccessSessionKey(accessID string) string
}

// Pair is the access id (JWT jti) and the opaque refresh token bound to it.
type Pair struct {
	AccessID     string
	RefreshToken string
}

// Manager stores one refresh token per access id in Redis. A token is valid
// only while its key exists, so logout and rotation revoke the access JWT too.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if accessTTL := cfg.AccessTokenTTL(); ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Start opens a new session and returns its identifiers.
func (m *Manager) Start(ctx context.Context) (Pair, error) {
	pair := Pair{AccessID: NewAccessID()}
	token, err := generateRefreshToken()
	if err != nil {
		return Pair{}, err
	}
	if err := m.store.Set(ctx, m.keyer.AccessSessionKey(pair.AccessID), token, m.ttl); err != nil {
		return Pair{}, err
	}
	pair.RefreshToken = token
	return pair, nil
}

// Rotate checks the refresh token against the stored one, then replaces the
// session with a fresh pair.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (Pair, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return Pair{}, ErrInvalidRefreshToken
	}

	key := m.keyer.AccessSessionKey(oldAccessID)
	stored, err := m.store.Get(ctx, key)
	if err != nil {
		return Pair{}, wrapNotFound(err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(provided)) != 1 {
		return Pair{}, ErrInvalidRefreshToken
	}

	next, err := m.Start(ctx)
	if err != nil {
		return Pair{}, err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return Pair{}, err
	}
	return next, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.AccessSessionKey(accessID))
}

// HasSession reports whether the access id still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, fmt.Errorf("access id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.AccessSessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID produces the identifier used as the JWT jti and Redis key suffix.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func wrapNotFound(err error) error {
	if errors.Is(err, redislib.Nil) {
		return ErrInvalidRefreshToken
	}
	return err
}
