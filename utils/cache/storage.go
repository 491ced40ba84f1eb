package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// storageTimeout bounds each storage call made by fiber middleware
const storageTimeout = 2 * time.Second

// Storage adapts RedisCache to fiber.Storage so middleware such as the
// rate limiter can share counters across instances.
type Storage struct {
	cache  *RedisCache
	prefix string
}

var _ fiber.Storage = (*Storage)(nil)

// NewStorage namespaces every key under prefix
func NewStorage(cache *RedisCache, prefix string) *Storage {
	return &Storage{cache: cache, prefix: prefix}
}

func (s *Storage) key(k string) string {
	return s.prefix + k
}

// Get returns nil, nil for missing keys as fiber.Storage requires
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	val, err := s.cache.Get(ctx, s.key(key))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return val, err
}

func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	return s.cache.Set(ctx, s.key(key), val, exp)
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	return s.cache.Delete(ctx, s.key(key))
}

// Reset clears only the keys under this storage's prefix
func (s *Storage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	return s.cache.DeletePrefix(ctx, s.prefix)
}

func (s *Storage) Close() error {
	return s.cache.Close()
}
