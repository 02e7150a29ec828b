package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Roster     RosterConfig
	Cooldown   CooldownConfig
	Logging    LoggingConfig
	ServiceKey string
}

// ServerConfig holds server specific configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration. OpTimeout caps
// every individual statement.
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	OpTimeout       time.Duration
}

// RedisConfig holds redis specific configuration. Redis backs the
// cooldown store and the premium cache when enabled.
type RedisConfig struct {
	Enabled  bool
	URL      string
	Password string
	DB       int
}

// KafkaConfig holds kafka specific configuration for the tag events
// topic.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// RosterConfig points at the space-membership collaborator.
type RosterConfig struct {
	URL        string
	ServiceKey string
}

// CooldownConfig holds limiter configuration. Store is "memory" or
// "redis"; OwnerIDs bypass the gate entirely.
type CooldownConfig struct {
	Store           string
	OwnerIDs        []int64
	PremiumCacheTTL time.Duration
}

// LoggingConfig holds logging specific configuration.
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.opTimeout", "5s")

	// Kafka defaults
	v.SetDefault("kafka.topic", "tag-events")

	// Cooldown defaults
	v.SetDefault("cooldown.store", "memory")
	v.SetDefault("cooldown.premiumCacheTTL", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
