package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the job service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Broker    BrokerConfig
	RateLimit RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// OAuthConfig configures the federated (Google) sign-in provider.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// Enabled reports whether federated sign-in is configured.
func (o OAuthConfig) Enabled() bool {
	return o.GoogleClientID != "" && o.GoogleClientSecret != ""
}

// BrokerConfig configures the optional AMQP event publisher.
type BrokerConfig struct {
	AMQPURL  string
	Exchange string
}

// RateLimitConfig bounds mutating requests per principal.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "job-board-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:5173/auth/callback"),
		},
		Broker: BrokerConfig{
			AMQPURL:  os.Getenv("AMQP_URL"),
			Exchange: getEnv("AMQP_EXCHANGE", "job-board.events"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// CacheBackend selects where the local acceptance cache is persisted.
type CacheBackend string

const (
	CacheBackendFile  CacheBackend = "file"
	CacheBackendRedis CacheBackend = "redis"
)

// ClientConfig configures the jobboard CLI.
type ClientConfig struct {
	BaseURL      string
	Timeout      time.Duration
	CacheBackend CacheBackend
	CachePath    string
	SessionPath  string
	Redis        RedisConfig
	LogLevel     string
}

// LoadClient reads CLI configuration from the environment.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	stateDir, err := os.UserConfigDir()
	if err != nil {
		stateDir = os.TempDir()
	}
	stateDir = filepath.Join(stateDir, "jobboard")

	redisDB, err := strconv.Atoi(getEnv("JOBBOARD_REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid JOBBOARD_REDIS_DB: %w", err)
	}

	cfg := &ClientConfig{
		BaseURL:      getEnv("JOBBOARD_API_URL", "http://localhost:3000"),
		Timeout:      time.Duration(getEnvAsInt("JOBBOARD_TIMEOUT_SECONDS", 15)) * time.Second,
		CacheBackend: CacheBackend(getEnv("JOBBOARD_CACHE_BACKEND", string(CacheBackendFile))),
		CachePath:    getEnv("JOBBOARD_CACHE_PATH", filepath.Join(stateDir, "accepted_jobs.json")),
		SessionPath:  getEnv("JOBBOARD_SESSION_PATH", filepath.Join(stateDir, "session.json")),
		Redis: RedisConfig{
			Addr:     getEnv("JOBBOARD_REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("JOBBOARD_REDIS_PASSWORD"),
			DB:       redisDB,
		},
		LogLevel: getEnv("JOBBOARD_LOG_LEVEL", "warn"),
	}
	if cfg.CacheBackend != CacheBackendFile && cfg.CacheBackend != CacheBackendRedis {
		return nil, fmt.Errorf("invalid JOBBOARD_CACHE_BACKEND %q", cfg.CacheBackend)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
