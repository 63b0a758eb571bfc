package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "jobboard:revoked:"

// RevocationList remembers logged-out token ids until they expire.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationList struct {
	client *redis.Client
}

// NewRedisRevocationList stores revoked ids as expiring Redis keys.
func NewRedisRevocationList(client *redis.Client) RevocationList {
	return &redisRevocationList{client: client}
}

func (r *redisRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (r *redisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type memoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationList keeps revoked ids in process memory.
func NewMemoryRevocationList() RevocationList {
	return &memoryRevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

func (m *memoryRevocationList) Revoke(_ context.Context, tokenID string, until time.Time) error {
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

func (m *memoryRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.revoked[tokenID]
	return ok && exp.After(m.now()), nil
}
