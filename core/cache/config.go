package cache

// Config holds configuration for the snapshot cache.
type Config struct {
	// Backend selects the cache implementation (memory, redis).
	Backend string `mapstructure:"backend" default:"memory"`
	// Addr is the redis address (host:port). Ignored for the memory backend.
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password is the redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the redis database index.
	DB int `mapstructure:"db" default:"0"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
