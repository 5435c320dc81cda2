package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Storage backends.
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreBackend      string
	MongoURI          string
	MongoDB           string
	MongoTransactions bool

	JWTSecret string
	JWTExpiry time.Duration

	AdminEmail    string
	AdminPassword string

	RedisAddr     string
	RedisPassword string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	BusinessTimezone string

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.Port = cast.ToString(getOrReturnDefault("PORT", "8080"))
	cfg.Env = cast.ToString(getOrReturnDefault("ENV", "development"))
	cfg.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))

	cfg.StoreBackend = strings.ToLower(cast.ToString(getOrReturnDefault("STORE_BACKEND", BackendMongo)))
	cfg.MongoURI = cast.ToString(getOrReturnDefault("MONGO_URI", "mongodb://localhost:27017"))
	cfg.MongoDB = cast.ToString(getOrReturnDefault("MONGO_DB", "fleet_maintenance"))
	cfg.MongoTransactions = cast.ToBool(getOrReturnDefault("MONGO_TRANSACTIONS", true))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", ""))
	cfg.JWTExpiry = cast.ToDuration(getOrReturnDefault("JWT_EXPIRY", "15m"))

	cfg.AdminEmail = cast.ToString(getOrReturnDefault("ADMIN_EMAIL", ""))
	cfg.AdminPassword = cast.ToString(getOrReturnDefault("ADMIN_PASSWORD", ""))

	cfg.RedisAddr = cast.ToString(getOrReturnDefault("REDIS_ADDR", ""))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.MQTTBroker = cast.ToString(getOrReturnDefault("MQTT_BROKER", ""))
	cfg.MQTTClientID = cast.ToString(getOrReturnDefault("MQTT_CLIENT_ID", "fleet-maintenance"))
	cfg.MQTTTopicPrefix = cast.ToString(getOrReturnDefault("MQTT_TOPIC_PREFIX", "fleet/maintenance"))

	cfg.BusinessTimezone = cast.ToString(getOrReturnDefault("BUSINESS_TIMEZONE", "Local"))

	cfg.LoginRateLimit = cast.ToInt(getOrReturnDefault("LOGIN_RATE_LIMIT", 10))
	cfg.LoginRateWindow = cast.ToDuration(getOrReturnDefault("LOGIN_RATE_WINDOW", "1m"))

	return cfg
}

// IsProduction reports whether ENV names a production deployment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Location resolves BusinessTimezone, falling back to the local zone.
func (c Config) Location() *time.Location {
	if c.BusinessTimezone == "" || strings.EqualFold(c.BusinessTimezone, "Local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
