package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"

	CatalogEmbedded = "embedded"
	CatalogSQLite   = "sqlite"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPPort string

	DurableBackend string
	DurableDBPath  string
	SessionBackend string
	SessionTTL     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI       string
	MongoDBName    string
	MongoRecordTTL time.Duration

	CatalogSource string
	CatalogDBPath string

	KafkaBrokers []string
	KafkaTopic   string

	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	ServiceName        string
}

// Load reads the configuration from the environment. Values from a .env file
// in the working directory are used when the variable is not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DurableBackend: strings.ToLower(getEnv("DURABLE_BACKEND", BackendSQLite)),
		DurableDBPath:  getEnv("DURABLE_DB_PATH", "./storefront.db"),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", BackendMemory)),
		SessionTTL:     getEnvDuration("SESSION_TTL", 30*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:    getEnv("MONGO_DB_NAME", "storefront"),
		MongoRecordTTL: getEnvDuration("MONGO_RECORD_TTL", 0), // zero: never expire

		CatalogSource: strings.ToLower(getEnv("CATALOG_SOURCE", CatalogEmbedded)),
		CatalogDBPath: getEnv("CATALOG_DB_PATH", "./catalog.db"),

		KafkaBrokers: getEnvList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-orders"),

		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB
		ServiceName:        getEnv("OTEL_SERVICE_NAME", "storefront"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
