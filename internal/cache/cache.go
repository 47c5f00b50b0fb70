package cache

import "time"

// Cache is what the grading pipeline needs from a cache backend.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Stop()
}
