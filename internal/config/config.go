package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Redis     RedisConfig
	Cart      CartConfig
	Payment   PaymentConfig
	RateLimit RateLimitConfig
	Janitor   JanitorConfig

	CatalogSeed bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CartConfig struct {
	// Store selects the snapshot backend: memory, redis or database.
	Store               string
	StorageKey          string
	SnapshotTTLSeconds  int
	MergePolicy         string
	SessionHeader       string
	MaxSessionsInMemory int
}

type PaymentConfig struct {
	Provider    string
	SuccessRate float64
	LatencyMS   int
	Currency    string
}

// RateLimitConfig throttles checkout attempts per cart session. It needs redis.
type RateLimitConfig struct {
	Enabled       bool
	CheckoutRate  float64
	CheckoutBurst int
}

// JanitorConfig drives the background sweep of idle sessions and stale snapshots.
type JanitorConfig struct {
	Enabled            bool
	IntervalSeconds    int
	IdleSessionSeconds int
}

const (
	CartStoreMemory   = "memory"
	CartStoreRedis    = "redis"
	CartStoreDatabase = "database"

	MergePolicyProduct               = "product"
	MergePolicyProductCustomizations = "product_customizations"

	DefaultStorageKey = "spice-marketplace-cart"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "spice-marketplace"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "spice"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "spice.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Cart: CartConfig{
			Store:               normalizeCartStore(getenv("CART_STORE", CartStoreMemory)),
			StorageKey:          strings.TrimSpace(getenv("CART_STORAGE_KEY", DefaultStorageKey)),
			SnapshotTTLSeconds:  getenvInt("CART_SNAPSHOT_TTL_SECONDS", 0),
			MergePolicy:         normalizeMergePolicy(getenv("CART_MERGE_POLICY", MergePolicyProduct)),
			SessionHeader:       getenv("CART_SESSION_HEADER", "X-Cart-Session"),
			MaxSessionsInMemory: getenvInt("CART_MAX_SESSIONS", 10_000),
		},
		Payment: PaymentConfig{
			Provider:    strings.ToLower(strings.TrimSpace(getenv("PAYMENT_PROVIDER", "simulated"))),
			SuccessRate: getenvFloat("PAYMENT_SUCCESS_RATE", 0.95),
			LatencyMS:   getenvInt("PAYMENT_LATENCY_MS", 0),
			Currency:    strings.ToLower(getenv("PAYMENT_CURRENCY", "usd")),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			CheckoutRate:  getenvFloat("RATE_LIMIT_CHECKOUT_RATE", 0.1),
			CheckoutBurst: getenvInt("RATE_LIMIT_CHECKOUT_BURST", 5),
		},
		Janitor: JanitorConfig{
			Enabled:            getenvBool("JANITOR_ENABLED", true),
			IntervalSeconds:    getenvInt("JANITOR_INTERVAL_SECONDS", 60),
			IdleSessionSeconds: getenvInt("JANITOR_IDLE_SESSION_SECONDS", 1800),
		},
		CatalogSeed: getenvBool("CATALOG_SEED", true),
	}

	return cfg
}

func normalizeCartStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CartStoreRedis:
		return CartStoreRedis
	case CartStoreDatabase, "db", "sql":
		return CartStoreDatabase
	default:
		return CartStoreMemory
	}
}

func normalizeMergePolicy(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case MergePolicyProductCustomizations:
		return MergePolicyProductCustomizations
	default:
		return MergePolicyProduct
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
