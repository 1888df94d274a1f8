package config

import (
	"os"
	"strings"
	"time"

	pkgconfig "github.com/Skotchmaster/product_dashboard/pkg/config"
)

const (
	StorageGorm   = "gorm"
	StorageBolt   = "bolt"
	StorageMemory = "memory"

	OTPModeMock   = "mock"
	OTPModeStrict = "strict"
)

type Config struct {
	ServiceName string
	Port        string
	LogLevel    string

	Storage     string
	DatabaseURL string
	BoltPath    string
	StorageKey  string

	SessionSecret []byte
	SessionTTL    time.Duration
	OTPMode       string
	CSRFSecure    bool

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

// Load reads the service configuration from the environment and exits the
// process when a required variable is missing or invalid.
func Load() *Config {
	cfg := &Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "product-dashboard"),
		Port:        pkgconfig.EnvDefault("SERVER_PORT", "8080"),
		LogLevel:    os.Getenv("LOG_LEVEL"),

		Storage:     strings.ToLower(pkgconfig.EnvDefault("STORAGE", StorageGorm)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		BoltPath:    pkgconfig.EnvDefault("BOLT_PATH", "dashboard.db"),
		StorageKey:  pkgconfig.EnvDefault("STORAGE_KEY", "products"),

		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),
		SessionTTL:    pkgconfig.EnvMinutesDefault("SESSION_TTL_MINUTES", 12*time.Hour),
		OTPMode:       strings.ToLower(pkgconfig.EnvDefault("OTP_MODE", OTPModeMock)),
		CSRFSecure:    pkgconfig.EnvBoolDefault("CSRF_SECURE", false),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgconfig.EnvDefault("ES_INDEX", "products"),
	}

	pkgconfig.MustNonEmptyBytes(cfg.SessionSecret, "SESSION_SECRET")
	pkgconfig.MustOneOf(cfg.Storage, "STORAGE", StorageGorm, StorageBolt, StorageMemory)
	pkgconfig.MustOneOf(cfg.OTPMode, "OTP_MODE", OTPModeMock, OTPModeStrict)
	if cfg.Storage == StorageGorm {
		pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	}
	return cfg
}
