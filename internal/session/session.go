package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pasar/internal/models"

	"github.com/redis/go-redis/v9"
)

// Session is the authenticated caller of a request.
type Session struct {
	AccountID string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

// IsUser reports whether the session belongs to a shopper.
func (s *Session) IsUser() bool { return s != nil && s.Role == models.RoleUser }

// IsVendor reports whether the session belongs to a vendor.
func (s *Session) IsVendor() bool { return s != nil && s.Role == models.RoleVendor }

// Store remembers revoked token ids until their tokens expire.
type Store interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{revoked: make(map[string]time.Time), now: time.Now}
}

// Revoke remembers tokenID until it expires.
func (m *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
		}
	}
	if until.After(now) {
		m.revoked[tokenID] = until
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not expired yet.
func (m *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.revoked[tokenID]
	return ok && exp.After(m.now()), nil
}

const redisKeyPrefix = "pasar:revoked:"

// RedisStore keeps revoked token ids in Redis with a TTL matching the token.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at url (redis://...).
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Revoke stores tokenID with a TTL that ends when the token expires.
func (r *RedisStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, redisKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID is on the revocation list.
func (r *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, redisKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}

// Close releases the Redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
