package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/luxehome-backend/pkg/config"
	redisclient "github.com/angelmondragon/luxehome-backend/pkg/redis"
)

const sessionIDBytes = 32

var sessionIDLen = base64.RawURLEncoding.EncodedLen(sessionIDBytes)

type sessionStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager issues and refreshes the anonymous storefront session that owns
// a cart. Sessions slide: every resolve pushes the expiry out by the TTL.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Resolver is the surface the session middleware depends on.
type Resolver interface {
	Resolve(ctx context.Context, presented string) (string, bool, error)
	TTL() time.Duration
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Manager{store: client, keyer: client, ttl: cfg.TTL}, nil
}

// TTL is the sliding lifetime of a session.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Resolve returns the session id to use for the request. A known presented
// id is refreshed and returned; an empty, malformed or expired id is replaced
// by a freshly issued one and created is true.
func (m *Manager) Resolve(ctx context.Context, presented string) (string, bool, error) {
	presented = strings.TrimSpace(presented)
	if validID(presented) {
		ok, err := m.store.Expire(ctx, m.keyer.SessionKey(presented), m.ttl)
		if err != nil {
			return "", false, err
		}
		if ok {
			return presented, false, nil
		}
	}
	id, err := m.issue(ctx)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (m *Manager) issue(ctx context.Context) (string, error) {
	for range 3 {
		id, err := NewSessionID()
		if err != nil {
			return "", err
		}
		ok, err := m.store.SetNX(ctx, m.keyer.SessionKey(id), time.Now().UTC().Unix(), m.ttl)
		if err != nil {
			return "", err
		}
		if ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate session id")
}

// NewSessionID returns a random url-safe identifier.
func NewSessionID() (string, error) {
	bytes := make([]byte, sessionIDBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

func validID(id string) bool {
	if len(id) != sessionIDLen {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(id)
	return err == nil
}
