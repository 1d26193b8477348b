package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	// Supabase (identity provider)
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseAnonKey        string
	SupabaseJWTSecret      string
	AuthTimeout            time.Duration

	// Record store
	StoreDriver    string
	StoreKeyPrefix string
	RedisURL       string

	// Database (postgres store + system logs)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// AI providers
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	AIFallbackAPIKey  string
	AIFallbackBaseURL string
	AIFallbackModel   string

	AITemperature   float32
	AIMaxTokens     int
	AITimeout       time.Duration
	AIRatePerMinute int
	AIRateBurst     int

	// Server
	Port             string
	CORSOrigins      string
	RoutePrefix      string
	LogRetentionDays int
	SentryDSN        string
	AppEnv           string
}

func Load() *Config {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	return &Config{
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		AuthTimeout:            parseDuration(getEnv("AUTH_TIMEOUT", "10s"), 10*time.Second),

		StoreDriver:    getEnv("STORE_DRIVER", StoreMemory),
		StoreKeyPrefix: getEnv("STORE_KEY_PREFIX", "medtrack:"),
		RedisURL:       getEnv("REDIS_URL", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "medtrack_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		AIFallbackAPIKey:  getEnv("AI_FALLBACK_API_KEY", ""),
		AIFallbackBaseURL: getEnv("AI_FALLBACK_BASE_URL", "https://api.deepseek.com/v1"),
		AIFallbackModel:   getEnv("AI_FALLBACK_MODEL", "deepseek-chat"),

		AITemperature:   parseFloat32(getEnv("AI_TEMPERATURE", "0.7"), 0.7),
		AIMaxTokens:     parseInt(getEnv("AI_MAX_TOKENS", "500"), 500),
		AITimeout:       parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),
		AIRatePerMinute: parseInt(getEnv("AI_RATE_PER_MINUTE", "10"), 10),
		AIRateBurst:     parseInt(getEnv("AI_RATE_BURST", "3"), 3),

		Port:             getEnv("PORT", "8080"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "*"),
		RoutePrefix:      getEnv("ROUTE_PREFIX", "/api"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
		SentryDSN:        getEnv("SENTRY_DSN", ""),
		AppEnv:           getEnv("APP_ENV", "development"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// DatabaseEnabled reports whether a Postgres connection should be opened.
// The postgres store needs one; the other drivers use it only for system logs.
func (c *Config) DatabaseEnabled() bool {
	return c.StoreDriver == StorePostgres || c.DBPassword != ""
}

// AIConfigured reports whether at least one chat-completion provider has a key.
func (c *Config) AIConfigured() bool {
	return c.OpenAIAPIKey != "" || c.AIFallbackAPIKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat32(s string, fallback float32) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}
