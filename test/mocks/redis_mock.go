package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements cache.RedisClient over an in-memory map of raw
// payloads. TTLs are recorded, not enforced.
type MockRedisClient struct {
	mu       sync.Mutex
	payloads map[string][]byte

	// Error injection
	GetError error
	SetError error
	DelError error

	SetCalls []SetCall
	DelCalls int
}

// SetCall records one Set: the key, the stored payload and its TTL.
type SetCall struct {
	Key     string
	Payload []byte
	TTL     time.Duration
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{payloads: make(map[string][]byte)}
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStringCmd(ctx)
	switch raw, ok := m.payloads[key]; {
	case m.GetError != nil:
		cmd.SetErr(m.GetError)
	case !ok:
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(string(raw))
	}
	return cmd
}

// Set accepts the []byte payloads the record cache writes.
func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}
	payload, ok := value.([]byte)
	if !ok {
		cmd.SetErr(fmt.Errorf("mock redis: expected []byte payload, got %T", value))
		return cmd
	}

	stored := append([]byte(nil), payload...)
	m.payloads[key] = stored
	m.SetCalls = append(m.SetCalls, SetCall{Key: key, Payload: stored, TTL: expiration})
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DelCalls++
	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}
	var deleted int64
	for _, key := range keys {
		if _, ok := m.payloads[key]; ok {
			delete(m.payloads, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

// SetKey seeds a raw payload, bypassing the cache encoder.
func (m *MockRedisClient) SetKey(key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[key] = payload
}

func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.payloads[key]
	return ok
}
