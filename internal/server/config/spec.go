package config

import "time"

// ServerConfig is the root configuration for rudis-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Log      LogSection      `koanf:"log"`
	Shutdown ShutdownSection `koanf:"shutdown"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	Admin AdminConfig `koanf:"admin"`
}

// RedisConfig configures the Redis protocol server.
type RedisConfig struct {
	Addr string `koanf:"addr"`
	// RateLimit is commands per second per connection. Zero disables it.
	RateLimit int `koanf:"rate_limit"`
}

// AdminConfig configures the admin HTTP server (health and metrics).
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// StrictExpiry hides keys past their deadline before they are purged.
	StrictExpiry bool `koanf:"strict_expiry"`
	// SubscriberBuffer is the message queue depth of each subscriber.
	SubscriberBuffer int `koanf:"subscriber_buffer"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ShutdownSection configures graceful shutdown.
type ShutdownSection struct {
	// Timeout bounds the shutdown hooks that run after connections drain.
	Timeout time.Duration `koanf:"timeout"`
}
