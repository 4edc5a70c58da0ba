// Package cache keeps the last fetched record listing in Redis so console
// restarts and repeated reads do not hit the membership API.
package cache

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AchilleasB/membership-console/internal/config"
	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

const recordsKey = "records"

var cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "console_record_cache_lookups_total",
	Help: "Record cache lookups by result (hit, miss, error).",
}, []string{"result"})

// RedisClient is the subset of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRecordCache stores the listing as zlib-compressed JSON.
type RedisRecordCache struct {
	client RedisClient
	prefix string
	ttl    time.Duration
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

var _ ports.RecordCache = (*RedisRecordCache)(nil)

func NewRedisRecordCache(client RedisClient, prefix string, ttl time.Duration, logger *slog.Logger) *RedisRecordCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRecordCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		cb:     config.NewCircuitBreaker(config.BreakerRedisCache),
		logger: logger.With("component", "record-cache"),
	}
}

func (c *RedisRecordCache) key() string {
	return c.prefix + recordsKey
}

// GetRecords reports ok=false on a miss.
func (c *RedisRecordCache) GetRecords(ctx context.Context) ([]domain.Member, bool, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		raw, err := c.client.Get(ctx, c.key()).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return raw, err
	})
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	raw, _ := result.([]byte)
	if raw == nil {
		cacheLookups.WithLabelValues("miss").Inc()
		c.logger.Debug("cache miss", "key", c.key())
		return nil, false, nil
	}

	records, err := decode(raw)
	if err != nil {
		cacheLookups.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("cache decode: %w", err)
	}
	cacheLookups.WithLabelValues("hit").Inc()
	c.logger.Debug("cache hit", "key", c.key(), "records", len(records))
	return records, true, nil
}

func (c *RedisRecordCache) SetRecords(ctx context.Context, records []domain.Member) error {
	payload, err := encode(records)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	_, err = c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.key(), payload, c.ttl).Err()
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisRecordCache) Invalidate(ctx context.Context) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.client.Del(ctx, c.key()).Err()
	})
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

func encode(records []domain.Member) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(records); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(raw []byte) ([]domain.Member, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	var records []domain.Member
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
