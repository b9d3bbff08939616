package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// NoExpiration stores a value until it is deleted or cleared
const NoExpiration time.Duration = -1

// Cache defines the key-value capability used for caching and for
// persisting settings/history
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a stable cache key from its parts
func CacheKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "postcompass:v1:" + hex.EncodeToString(hash[:])
}
