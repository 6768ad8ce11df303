package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"churnportal/internal/domain/employee"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreMongo  = "mongo"
)

// Config aggregates portal configuration loaded from environment variables.
type Config struct {
	Env                     string
	LogLevel                string
	HTTPAddr                string
	PredictAPIURL           string
	PredictAPITimeout       time.Duration
	// PredictAPIHeaderTimeout bounds the wait for response headers so a hung
	// API cannot leave a form loading forever. Zero disables it.
	PredictAPIHeaderTimeout time.Duration
	Scale                   employee.Scale
	SessionStore            string
	MongoURI                string
	MongoDB                 string
	SessionCookieSecure     bool
	CSRFKey                 string
	CORSOrigins             []string
	KafkaBrokers            []string
	KafkaTopicPrefix        string
	ReportsS3Endpoint       string
	ReportsS3AccessKey      string
	ReportsS3SecretKey      string
	ReportsS3Bucket         string
	ReportsS3UseSSL         bool
	ReportsS3PublicURL      string
	ReportsS3LinkTTL        time.Duration
	ShutdownTimeout         time.Duration
}

// Load parses configuration from the current environment.
func Load() (Config, error) {
	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		PredictAPIURL:      strings.TrimRight(getEnv("PREDICT_API_URL", "http://localhost:5000"), "/"),
		SessionStore:       strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
		MongoURI:           os.Getenv("MONGO_URI"),
		MongoDB:            getEnv("MONGO_DB", "churn_portal"),
		CSRFKey:            os.Getenv("CSRF_KEY"),
		KafkaTopicPrefix:   getEnv("KAFKA_TOPIC_PREFIX", ""),
		ReportsS3Endpoint:  os.Getenv("REPORTS_S3_ENDPOINT"),
		ReportsS3AccessKey: getEnv("REPORTS_S3_ACCESS_KEY", "minioadmin"),
		ReportsS3SecretKey: getEnv("REPORTS_S3_SECRET_KEY", "minioadmin"),
		ReportsS3Bucket:    getEnv("REPORTS_S3_BUCKET", "churn-reports"),
		ReportsS3PublicURL: os.Getenv("REPORTS_S3_PUBLIC_URL"),
	}

	scale, err := employee.ParseScale(getEnv("PORTAL_SCALE", string(employee.ScaleTen)))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORTAL_SCALE: %w", err)
	}
	cfg.Scale = scale

	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	if cfg.PredictAPITimeout, err = parseDurationEnv("PREDICT_API_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.PredictAPIHeaderTimeout, err = parseDurationEnv("PREDICT_API_HEADER_TIMEOUT", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ReportsS3LinkTTL, err = parseDurationEnv("REPORTS_S3_LINK_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SessionCookieSecure, err = parseBoolEnv("SESSION_COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.ReportsS3UseSSL, err = parseBoolEnv("REPORTS_S3_USE_SSL", false); err != nil {
		return Config{}, err
	}

	switch cfg.SessionStore {
	case SessionStoreMemory:
	case SessionStoreMongo:
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when SESSION_STORE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid SESSION_STORE %q: want memory or mongo", cfg.SessionStore)
	}
	if cfg.PredictAPITimeout < 0 {
		return Config{}, fmt.Errorf("PREDICT_API_TIMEOUT must not be negative")
	}
	if cfg.PredictAPIHeaderTimeout < 0 {
		return Config{}, fmt.Errorf("PREDICT_API_HEADER_TIMEOUT must not be negative")
	}
	if cfg.CSRFKey != "" && len(cfg.CSRFKey) != 32 {
		return Config{}, fmt.Errorf("CSRF_KEY must be exactly 32 bytes, got %d", len(cfg.CSRFKey))
	}
	return cfg, nil
}

// AuditEnabled reports whether prediction events go to Kafka.
func (c Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ReportsEnabled reports whether batch reports are archived in S3.
func (c Config) ReportsEnabled() bool {
	return c.ReportsS3Endpoint != ""
}

func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "local"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
