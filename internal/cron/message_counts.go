package cron

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CountStore remembers the last observed message count per lead.
type CountStore interface {
	Load(ctx context.Context, leadID string) (count int, ok bool, err error)
	Save(ctx context.Context, leadID string, count int) error
}

// MemoryCountStore keeps counts in process. Baselines reset on restart.
type MemoryCountStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMemoryCountStore() *MemoryCountStore {
	return &MemoryCountStore{counts: map[string]int{}}
}

func (m *MemoryCountStore) Load(_ context.Context, leadID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.counts[strings.ToUpper(leadID)]
	return n, ok, nil
}

func (m *MemoryCountStore) Save(_ context.Context, leadID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[strings.ToUpper(leadID)] = count
	return nil
}

type countRedis interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetInt(ctx context.Context, key string) (int64, bool, error)
	MessageCountKey(leadID string) string
}

// RedisCountStore shares baselines between watcher replicas and restarts.
type RedisCountStore struct {
	client    countRedis
	retention time.Duration
}

func NewRedisCountStore(client countRedis, retention time.Duration) *RedisCountStore {
	return &RedisCountStore{client: client, retention: retention}
}

func (r *RedisCountStore) Load(ctx context.Context, leadID string) (int, bool, error) {
	n, ok, err := r.client.GetInt(ctx, r.client.MessageCountKey(strings.ToUpper(leadID)))
	return int(n), ok, err
}

func (r *RedisCountStore) Save(ctx context.Context, leadID string, count int) error {
	return r.client.Set(ctx, r.client.MessageCountKey(strings.ToUpper(leadID)), count, r.retention)
}
