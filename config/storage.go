package config

import (
	"fmt"
	"strings"
)

// StoreBackend selects where plugin configuration is persisted.
type StoreBackend string

const (
	StoreBackendMemory   StoreBackend = "memory"
	StoreBackendFile     StoreBackend = "file"
	StoreBackendRedis    StoreBackend = "redis"
	StoreBackendPostgres StoreBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for StoreBackend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := StoreBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StoreBackendMemory, StoreBackendFile, StoreBackendRedis, StoreBackendPostgres:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid StoreBackend: %q (valid options: memory, file, redis, postgres)", v)
	}
}

// StorageConfig selects and configures the config store backend.
type StorageConfig struct {
	Backend  StoreBackend `env:"BACKEND"   envDefault:"file"`
	FilePath string       `env:"FILE_PATH" envDefault:"spotify-auth.yaml"`

	// EncryptionKey encrypts the secrets scope when set (base64, 32 bytes).
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	// RunMigrations applies the embedded migrations before using the postgres backend.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"true"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`
}

// Sanitize applies guardrails to storage configuration values.
func (c *StorageConfig) Sanitize() {
	if c.Backend == "" {
		c.Backend = StoreBackendFile
	}
	if c.FilePath = strings.TrimSpace(c.FilePath); c.FilePath == "" {
		c.FilePath = "spotify-auth.yaml"
	}
	c.EncryptionKey = strings.TrimSpace(c.EncryptionKey)
	c.Redis.KeyPrefix = strings.TrimSpace(c.Redis.KeyPrefix)
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"spotify"`
	Password string `env:"PASSWORD" envDefault:"spotify"`
	Name     string `env:"NAME"     envDefault:"spotify_auth"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	KeyPrefix          string   `env:"KEY_PREFIX"           envDefault:"spotify-auth:config:"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
