package config

import "time"

// CacheConfig controls the redis read-through cache in front of the user
// store. When Enabled is false or no Redis client is configured, lookups go
// straight to the store. TTL bounds how long a deactivation made outside
// this process can go unnoticed.
type CacheConfig struct {
	Enabled bool          `env:"CACHE_ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	Prefix  string        `env:"CACHE_PREFIX" envDefault:"cache"`
}

// LoadCacheConfig reads CACHE_* variables. Unparseable values fall back to
// the defaults.
func LoadCacheConfig() CacheConfig {
	var cfg CacheConfig
	if err := ParseEnv(&cfg); err != nil {
		return CacheConfig{Enabled: true, TTL: 30 * time.Second, Prefix: "cache"}
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
