package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/codeduel/go/internal/match"
	"gopkg.in/yaml.v3"
)

const (
	backendPostgres = "postgres"
	backendMongo    = "mongo"
	backendMemory   = "memory"
)

// Config is the server configuration. Values come from an optional YAML file
// and are then overridden by environment variables.
type Config struct {
	Port          string        `yaml:"port"`
	LogLevel      string        `yaml:"log_level"`
	StoreBackend  string        `yaml:"store_backend"`
	MongoURI      string        `yaml:"mongo_uri"`
	MongoDB       string        `yaml:"mongo_db"`
	RedisAddr     string        `yaml:"redis_addr"`
	StatsTTL      time.Duration `yaml:"stats_ttl"`
	NATSURL       string        `yaml:"nats_url"`
	QuestionsFile string        `yaml:"questions_file"`
	Match         MatchConfig   `yaml:"match"`
}

// MatchConfig holds the match lifecycle settings.
type MatchConfig struct {
	Duration           time.Duration `yaml:"duration"`
	EndOnBothCompleted bool          `yaml:"end_on_both_completed"`
	PersistMaxRetries  int           `yaml:"persist_max_retries"`
	PersistRetryDelay  time.Duration `yaml:"persist_retry_delay"`
}

func defaultConfig() *Config {
	lifecycle := match.DefaultConfig()
	return &Config{
		Port:         "8080",
		LogLevel:     "info",
		StoreBackend: backendPostgres,
		MongoURI:     "mongodb://localhost:27017",
		MongoDB:      "codeduel",
		StatsTTL:     24 * time.Hour,
		Match: MatchConfig{
			Duration:           lifecycle.SessionDuration,
			EndOnBothCompleted: lifecycle.EndOnBothCompleted,
			PersistMaxRetries:  lifecycle.PersistMaxRetries,
			PersistRetryDelay:  lifecycle.PersistRetryDelay,
		},
	}
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Port = getEnv("PORT", config.Port)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.StoreBackend = getEnv("STORE_BACKEND", config.StoreBackend)
	config.MongoURI = getEnv("MONGO_URI", config.MongoURI)
	config.MongoDB = getEnv("MONGO_DB", config.MongoDB)
	config.RedisAddr = getEnv("REDIS_ADDR", config.RedisAddr)
	config.StatsTTL = getEnvAsDuration("STATS_TTL", config.StatsTTL)
	config.NATSURL = getEnv("NATS_URL", config.NATSURL)
	config.QuestionsFile = getEnv("QUESTIONS_FILE", config.QuestionsFile)
	config.Match.Duration = getEnvAsDuration("MATCH_DURATION", config.Match.Duration)
	config.Match.EndOnBothCompleted = getEnvAsBool("END_ON_BOTH_COMPLETED", config.Match.EndOnBothCompleted)
	config.Match.PersistMaxRetries = getEnvAsInt("PERSIST_MAX_RETRIES", config.Match.PersistMaxRetries)
	config.Match.PersistRetryDelay = getEnvAsDuration("PERSIST_RETRY_DELAY", config.Match.PersistRetryDelay)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.StoreBackend {
	case backendPostgres, backendMongo, backendMemory:
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.Match.Duration <= 0 {
		return fmt.Errorf("match duration must be positive, got %s", c.Match.Duration)
	}
	if c.Match.PersistMaxRetries < 1 {
		return fmt.Errorf("persist max retries must be at least 1, got %d", c.Match.PersistMaxRetries)
	}
	return nil
}

// lifecycle converts the match settings into coordinator settings.
func (c *Config) lifecycle() match.Config {
	cfg := match.DefaultConfig()
	cfg.SessionDuration = c.Match.Duration
	cfg.EndOnBothCompleted = c.Match.EndOnBothCompleted
	cfg.PersistMaxRetries = c.Match.PersistMaxRetries
	cfg.PersistRetryDelay = c.Match.PersistRetryDelay
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
