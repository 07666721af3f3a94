package out

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	authout "watchless/internal/modules/auth/port/out"
	"watchless/internal/platform/clock"
)

const revokedKeyPrefix = "watchless:revoked:"

// MemoryRevocationStore keeps revoked token IDs in process. Expired entries
// are dropped lazily.
type MemoryRevocationStore struct {
	clock   clock.Clock
	mu      sync.Mutex
	revoked map[string]time.Time
}

var (
	_ authout.RevocationStore = (*MemoryRevocationStore)(nil)
	_ authout.RevocationStore = (*RedisRevocationStore)(nil)
)

func NewMemoryRevocationStore(clk clock.Clock) *MemoryRevocationStore {
	return &MemoryRevocationStore{clock: clk, revoked: map[string]time.Time{}}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = until
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.clock.Now().Before(until) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// RedisRevocationStore shares revocations between server instances. Keys
// expire with the token.
type RedisRevocationStore struct {
	client *redis.Client
	clock  clock.Clock
}

func NewRedisRevocationStore(client *redis.Client, clk clock.Clock) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, clock: clk}
}

// ConnectRedis accepts either a redis:// URL or a host:port address.
func ConnectRedis(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
