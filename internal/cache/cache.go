// Package cache provides TTL caching for fetched feed bodies.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a feed URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "newsdesk:v1:" + hex.EncodeToString(hash[:])
}
