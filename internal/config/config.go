package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "time/tzdata" // report zone must load in minimal containers
)

// Config holds all app configuration.
type Config struct {
	// Server
	Port string

	// Order sources; Supabase wins when both are set.
	DatabaseURL string
	SupabaseURL string
	SupabaseKey string
	OrdersTable string
	RateLimit   float64 // PostgREST requests per second

	// Reports
	Location    *time.Location
	CacheTTL    time.Duration
	DefaultTopN int

	// Redis (optional shared cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment, loading .env first if
// present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	tz := getEnv("REPORT_TIMEZONE", "America/Mexico_City")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", tz, err)
	}

	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parsing CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),
		OrdersTable: getEnv("ORDERS_TABLE", "orders_final"),
		RateLimit:   getEnvAsFloat("SOURCE_RATE_LIMIT", 5),

		Location:    loc,
		CacheTTL:    ttl,
		DefaultTopN: getEnvAsInt("DEFAULT_TOP_N", 20),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}

	if cfg.SupabaseURL != "" && cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("SUPABASE_KEY is required when SUPABASE_URL is set")
	}
	if cfg.DefaultTopN < 1 {
		return nil, fmt.Errorf("DEFAULT_TOP_N must be positive, got %d", cfg.DefaultTopN)
	}
	return cfg, nil
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultVal
}
