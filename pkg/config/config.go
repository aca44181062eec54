package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Guidance GuidanceConfig
	Cache    CacheConfig
	Llama    LlamaConfig
	OTEL     OTELConfig
	Env      string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds SQLite database configuration
type DatabaseConfig struct {
	Path string
}

// RedisConfig holds Redis configuration for the persistent guidance cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// GuidanceConfig holds the freshness policy and persistent cache settings
type GuidanceConfig struct {
	RefreshDays  int
	CacheTTLDays int
}

// CacheConfig holds the in-memory lookup cache settings
type CacheConfig struct {
	MemoryTTLSeconds     int
	SweepIntervalSeconds int
}

// LlamaConfig holds the llama.cpp server endpoint and inference parameters.
// ModelPath, ContextSize, Threads and BatchSize describe how the backing
// llama-server process is expected to be launched; the sampling fields are
// sent with every completion request.
type LlamaConfig struct {
	BaseURL       string
	ModelPath     string
	ContextSize   int
	Threads       int
	BatchSize     int
	Temperature   float64
	TopP          float64
	RepeatPenalty float64
	MaxTokens     int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8888),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "data/obd2_codes.db"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Guidance: GuidanceConfig{
			RefreshDays:  getEnvAsInt("REFRESH_DAYS", 30),
			CacheTTLDays: getEnvAsInt("GUIDANCE_CACHE_TTL_DAYS", 7),
		},
		Cache: CacheConfig{
			MemoryTTLSeconds:     getEnvAsInt("MEMORY_CACHE_TTL_SECONDS", 900),
			SweepIntervalSeconds: getEnvAsInt("SWEEP_INTERVAL_SECONDS", 3600),
		},
		Llama: LlamaConfig{
			BaseURL:       getEnv("LLAMA_BASE_URL", "http://localhost:8080"),
			ModelPath:     getEnv("LLAMA_MODEL_PATH", "models/tinyllama-1.1b-chat-v1.0.Q5_K_M.gguf"),
			ContextSize:   getEnvAsInt("LLAMA_CTX_SIZE", 1024),
			Threads:       getEnvAsInt("LLAMA_THREADS", 4),
			BatchSize:     getEnvAsInt("LLAMA_BATCH_SIZE", 256),
			Temperature:   getEnvAsFloat("LLAMA_TEMPERATURE", 0.1),
			TopP:          getEnvAsFloat("LLAMA_TOP_P", 0.9),
			RepeatPenalty: getEnvAsFloat("LLAMA_REPEAT_PENALTY", 1.05),
			MaxTokens:     getEnvAsInt("LLAMA_MAX_TOKENS", 150),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "obd2-explorer"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Env: getEnv("APP_ENV", "development"),
	}, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RefreshWindow returns the refresh window as a duration
func (c *GuidanceConfig) RefreshWindow() time.Duration {
	return time.Duration(c.RefreshDays) * 24 * time.Hour
}

// CacheTTL returns the persistent guidance cache TTL as a duration
func (c *GuidanceConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLDays) * 24 * time.Hour
}

// MemoryTTL returns the in-memory lookup cache TTL as a duration
func (c *CacheConfig) MemoryTTL() time.Duration {
	return time.Duration(c.MemoryTTLSeconds) * time.Second
}

// SweepInterval returns the cache sweep interval as a duration
func (c *CacheConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
