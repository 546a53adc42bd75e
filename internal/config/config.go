package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DatabaseURL      string
	DBMaxOpenConns   int
	DBMaxIdleConns   int
	DBConnMaxLife    time.Duration
	DBConnectTimeout time.Duration

	RedisURL          string
	RedisPoolSize     int
	DashboardCacheTTL time.Duration

	// JWTSecret verifies access tokens minted by the hosted identity provider.
	JWTSecret string

	MinIOEndpoint       string
	MinIOPublicEndpoint string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicUseSSL   bool
	MaxPhotoSize        int64

	CORSOrigins string

	ResendAPIKey string
	FromEmail    string
	Domain       string
	// EmailLocale selects the translation set used for email subjects.
	EmailLocale string

	// StrictAudit commits a moderation write and its audit entry atomically.
	// When false (the default) an audit failure is logged and the write still
	// commits.
	StrictAudit bool
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLife:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBConnectTimeout: getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),

		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisPoolSize:     getIntEnv("REDIS_POOL_SIZE", 0),
		DashboardCacheTTL: getDurationEnv("DASHBOARD_CACHE_TTL", time.Minute),

		JWTSecret: getEnv("JWT_SECRET", ""),

		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOPublicEndpoint: getEnv("MINIO_PUBLIC_ENDPOINT", getEnv("MINIO_ENDPOINT", "localhost:9000")),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "listing-photos"),
		MinIOUseSSL:         getBoolEnv("MINIO_USE_SSL", false),
		MinIOPublicUseSSL:   getBoolEnv("MINIO_PUBLIC_USE_SSL", true),
		MaxPhotoSize:        getInt64Env("MAX_PHOTO_SIZE", 5<<20),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@example.com"),
		Domain:       getEnv("DOMAIN", "localhost:5173"),
		EmailLocale:  getEnv("EMAIL_LOCALE", "en"),

		StrictAudit: getBoolEnv("MODERATION_STRICT_AUDIT", false),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
