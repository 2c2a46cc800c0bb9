package navigation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultLocationTTL = 30 * time.Minute

// MemoryRepository keeps locations in process memory and forgets visitors
// that have been idle longer than the TTL.
type MemoryRepository struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]memoryEntry
}

type memoryEntry struct {
	loc     Location
	expires time.Time
}

// NewMemoryRepository returns an in-process repository. ttl <= 0 selects the default.
func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	if ttl <= 0 {
		ttl = defaultLocationTTL
	}
	return &MemoryRepository{ttl: ttl, now: time.Now, items: map[string]memoryEntry{}}
}

func (m *MemoryRepository) Load(_ context.Context, visitor string) (Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[visitor]
	if !ok {
		return Location{}, nil
	}
	if m.now().After(e.expires) {
		delete(m.items, visitor)
		return Location{}, nil
	}
	return e.loc.clone(), nil
}

func (m *MemoryRepository) Save(_ context.Context, visitor string, loc Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.items[visitor] = memoryEntry{loc: loc.clone(), expires: now.Add(m.ttl)}
	// opportunistic sweep keeps the map bounded by active visitors
	if len(m.items)%256 == 0 {
		for k, e := range m.items {
			if now.After(e.expires) {
				delete(m.items, k)
			}
		}
	}
	return nil
}

// Len returns the number of stored visitors.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// RedisRepository shares locations between server instances.
type RedisRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRepository connects to redisURL and verifies the connection.
func NewRedisRepository(ctx context.Context, redisURL string, ttl time.Duration) (*RedisRepository, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("navigation: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("navigation: ping redis: %w", err)
	}
	return NewRedisRepositoryWithClient(client, ttl), nil
}

// NewRedisRepositoryWithClient wraps an existing client.
func NewRedisRepositoryWithClient(client *redis.Client, ttl time.Duration) *RedisRepository {
	if ttl <= 0 {
		ttl = defaultLocationTTL
	}
	return &RedisRepository{client: client, prefix: "nav:loc:", ttl: ttl}
}

func (r *RedisRepository) Load(ctx context.Context, visitor string) (Location, error) {
	data, err := r.client.Get(ctx, r.prefix+visitor).Bytes()
	if errors.Is(err, redis.Nil) {
		return Location{}, nil
	}
	if err != nil {
		return Location{}, err
	}
	var loc Location
	if err := json.Unmarshal(data, &loc); err != nil {
		// a corrupt entry is treated as a fresh visitor
		return Location{}, nil
	}
	return loc, nil
}

func (r *RedisRepository) Save(ctx context.Context, visitor string, loc Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+visitor, data, r.ttl).Err()
}

// Close releases the underlying client.
func (r *RedisRepository) Close() error { return r.client.Close() }
