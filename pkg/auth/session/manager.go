package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
)

const refreshTokenBytes = 32

var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	errMissingAccessID     = errors.New("access id is required")
)

// record is stored under the access id. Only a digest of the refresh token
// is kept so a leaked store cannot be replayed against /auth/refresh.
type record struct {
	TokenDigest string    `json:"token_sha256"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Manager issues, rotates and revokes refresh sessions keyed by JWT jti.
type Manager struct {
	store kv.Store
	ttl   time.Duration
	now   func() time.Time
}

// AccessSessionChecker is the read side the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager requires the refresh TTL to outlive the access token TTL.
func NewManager(store kv.Store, cfg config.JWTConfig) (*Manager, error) {
	if store == nil {
		return nil, errors.New("kv store is required")
	}
	refreshTTL := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	switch {
	case refreshTTL <= 0:
		return nil, errors.New("refresh token ttl must be positive")
	case refreshTTL <= accessTTL:
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", refreshTTL, accessTTL)
	}
	return &Manager{store: store, ttl: refreshTTL, now: time.Now}, nil
}

// Generate opens a session for accessID and returns the opaque refresh token.
func (m *Manager) Generate(ctx context.Context, accessID, userID string) (string, error) {
	if blank(accessID) {
		return "", errMissingAccessID
	}
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	rec := record{TokenDigest: digest(token), UserID: userID, CreatedAt: m.now().UTC()}
	if err := kv.SetJSON(ctx, m.store, kv.AccessSessionKey(accessID), rec, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate exchanges a refresh token for a new access id and refresh token.
// The old session is removed so each refresh token works once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if blank(oldAccessID) || blank(provided) {
		return "", "", ErrInvalidRefreshToken
	}
	key := kv.AccessSessionKey(oldAccessID)

	var rec record
	switch err := kv.GetJSON(ctx, m.store, key, &rec); {
	case errors.Is(err, kv.ErrNotFound), errors.Is(err, kv.ErrMalformed):
		return "", "", ErrInvalidRefreshToken
	case err != nil:
		return "", "", err
	}
	if subtle.ConstantTimeCompare([]byte(rec.TokenDigest), []byte(digest(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	accessID := NewAccessID()
	token, err := m.Generate(ctx, accessID, rec.UserID)
	if err != nil {
		return "", "", err
	}
	if err := m.store.Delete(ctx, key); err != nil {
		return "", "", err
	}
	return accessID, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if blank(accessID) {
		return errMissingAccessID
	}
	return m.store.Delete(ctx, kv.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if blank(accessID) {
		return false, errMissingAccessID
	}
	_, err := m.store.Get(ctx, kv.AccessSessionKey(accessID))
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// NewAccessID mints the JWT jti that doubles as the session key.
func NewAccessID() string {
	return uuid.NewString()
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
