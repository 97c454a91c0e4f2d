// README: Redis client initialization for the shared geocode cache.
package infra

import "github.com/redis/go-redis/v9"

// NewRedis returns a client for the given address, or nil when addr is
// empty (the shared cache is optional).
func NewRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}
