package cache

import (
	"errors"
	"time"
)

// Cache is the standard key-value store contract. Values are JSON
// serialized by implementations. A ttl of 0 means the item never
// expires.
type Cache interface {
	Set(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
	Has(key string) (bool, error)
	Delete(key string) error
	Close() error
}

var (
	ErrKeyNotFound = errors.New("key not found in cache")
	ErrKeyExpired  = errors.New("key has expired")
	ErrInvalidKey  = errors.New("invalid key")
)
