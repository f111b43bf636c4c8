package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Permission group cache kinds.
const (
	PermissionCacheLRU   = "lru"
	PermissionCacheRedis = "redis"
	PermissionCacheNone  = "none"
)

// Config holds application configuration.
type Config struct {
	Port           string
	IsProduction   bool
	StoreDriver    string
	DatabaseURL    string
	EnableDBCheck  bool
	MigrationsPath string
	StoreTimeout   time.Duration

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	PermissionCache     string
	SingleInstance      bool
	PermissionCacheSize int
	PermissionCacheTTL  time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int

	LoginRateLimit     string
	CORSAllowedOrigins []string

	PosthogAPIKey   string
	PosthogEndpoint string

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`

	ExchangeRateHistoryLimit int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("STORE_TIMEOUT", "5s")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_DURATION", "8h")
	viper.SetDefault("JWT_ISSUER", "travel-backoffice")
	viper.SetDefault("PERMISSION_CACHE", "")
	viper.SetDefault("SINGLE_INSTANCE", false)
	viper.SetDefault("PERMISSION_CACHE_SIZE", 256)
	viper.SetDefault("PERMISSION_CACHE_TTL", "5m")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOGIN_RATE_LIMIT", "10-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("EXCHANGE_RATE_HISTORY_LIMIT", 30)

	// Environment variables override .env values and defaults.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.StoreDriver = strings.ToLower(viper.GetString("STORE_DRIVER"))
	if cfg.StoreDriver != StoreDriverPostgres && cfg.StoreDriver != StoreDriverMemory {
		log.Printf("Warning: unknown STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")
	cfg.StoreTimeout = durationOrDefault("STORE_TIMEOUT", 5*time.Second)

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", 8*time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.SingleInstance = viper.GetBool("SINGLE_INSTANCE")
	cfg.PermissionCache = resolvePermissionCache(
		strings.ToLower(viper.GetString("PERMISSION_CACHE")), cfg.StoreDriver, cfg.SingleInstance)
	cfg.PermissionCacheSize = viper.GetInt("PERMISSION_CACHE_SIZE")
	if cfg.PermissionCacheSize <= 0 {
		cfg.PermissionCacheSize = 256
	}
	cfg.PermissionCacheTTL = durationOrDefault("PERMISSION_CACHE_TTL", 5*time.Minute)
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	for _, origin := range strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	if cfg.GoogleClientID == "" {
		log.Println("Warning: GOOGLE_CLIENT_ID not set. Google sign-in is disabled.")
	}

	cfg.ExchangeRateHistoryLimit = viper.GetInt("EXCHANGE_RATE_HISTORY_LIMIT")
	if cfg.ExchangeRateHistoryLimit <= 0 {
		cfg.ExchangeRateHistoryLimit = 30
	}

	return cfg, nil
}

// resolvePermissionCache picks the group cache. A process-local LRU cannot see
// edits made by other replicas, so with postgres it needs SINGLE_INSTANCE.
func resolvePermissionCache(kind, storeDriver string, singleInstance bool) string {
	def := PermissionCacheNone
	if storeDriver == StoreDriverMemory {
		def = PermissionCacheLRU
	}
	switch kind {
	case "":
		return def
	case PermissionCacheRedis, PermissionCacheNone:
		return kind
	case PermissionCacheLRU:
		if storeDriver == StoreDriverPostgres && !singleInstance {
			log.Printf("Warning: PERMISSION_CACHE=lru with postgres requires SINGLE_INSTANCE=true. Defaulting to %s.\n", PermissionCacheNone)
			return PermissionCacheNone
		}
		return kind
	default:
		log.Printf("Warning: unknown PERMISSION_CACHE ('%s'). Defaulting to %s.\n", kind, def)
		return def
	}
}

// durationOrDefault parses key as a duration and falls back to def with a warning.
func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
