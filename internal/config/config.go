package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// MQTTConfig holds event-bus connection settings.
type MQTTConfig struct {
	Broker        string
	ClientID      string
	Username      string
	Password      string
	QoS           byte
	TopicPrefix   string // prefix stripped from topics to obtain point paths, e.g. "cronus/v1/"
	QueueCapacity int    // bounded processing queue; newest messages are dropped when full
}

// RedisConfig holds Redis connection settings (transition journal).
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DatabaseConfig holds PostgreSQL connection settings (audit log).
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN builds the database connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// Config is the leak consumer service configuration.
type Config struct {
	MQTT     MQTTConfig
	Redis    RedisConfig
	Database DatabaseConfig

	// Correlation cache configuration
	Cache struct {
		MetadataTTL   time.Duration // TTL for cached point metadata
		StateTTL      time.Duration // TTL for last-applied fault values
		SweepInterval time.Duration // interval between eviction sweeps
	}

	// Inventory API configuration
	InventoryAPI struct {
		URL     string // empty disables the API and falls back to the console sink
		Timeout time.Duration
	}

	// Transition journal (Redis Streams)
	Journal struct {
		Enabled bool
		Stream  string
	}

	// Audit log (PostgreSQL)
	Audit struct {
		Enabled bool
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	// Event bus
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", defaultClientID())
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = byte(getEnvInt("MQTT_QOS", 1))
	cfg.MQTT.TopicPrefix = getEnv("MQTT_TOPIC_PREFIX", "cronus/v1/")
	cfg.MQTT.QueueCapacity = getEnvInt("MQTT_QUEUE_CAPACITY", 1024)

	// Correlation caches
	cfg.Cache.MetadataTTL = time.Duration(getEnvInt("CACHE_METADATA_TTL_SECONDS", 3600)) * time.Second
	cfg.Cache.StateTTL = time.Duration(getEnvInt("CACHE_STATE_TTL_SECONDS", 3600)) * time.Second
	cfg.Cache.SweepInterval = time.Duration(getEnvInt("CACHE_SWEEP_INTERVAL_SECONDS", 60)) * time.Second

	// Inventory API
	cfg.InventoryAPI.URL = getEnv("INVENTORY_API_URL", "")
	cfg.InventoryAPI.Timeout = time.Duration(getEnvInt("INVENTORY_API_TIMEOUT_SECONDS", 30)) * time.Second

	// Transition journal
	cfg.Journal.Enabled = getEnvBool("JOURNAL_ENABLED", false)
	cfg.Journal.Stream = getEnv("JOURNAL_STREAM", "leak:transitions:stream")
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// Audit log
	cfg.Audit.Enabled = getEnvBool("AUDIT_ENABLED", false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "fleet")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	if c.MQTT.Broker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.MQTT.QueueCapacity <= 0 {
		return fmt.Errorf("MQTT_QUEUE_CAPACITY must be positive, got %d", c.MQTT.QueueCapacity)
	}
	if c.Cache.MetadataTTL <= 0 {
		return fmt.Errorf("CACHE_METADATA_TTL_SECONDS must be positive")
	}
	if c.Cache.StateTTL <= 0 {
		return fmt.Errorf("CACHE_STATE_TTL_SECONDS must be positive")
	}
	return nil
}

// defaultClientID builds a unique client ID so replicas never collide on the broker.
func defaultClientID() string {
	return "fleet-leak-consumer-" + uuid.New().String()[:8]
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
