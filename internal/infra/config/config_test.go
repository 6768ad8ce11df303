package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnportal/internal/domain/employee"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "PREDICT_API_URL", "PREDICT_API_TIMEOUT", "PREDICT_API_HEADER_TIMEOUT", "PORTAL_SCALE",
		"SESSION_STORE", "MONGO_URI", "KAFKA_BROKERS", "REPORTS_S3_ENDPOINT", "CSRF_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "http://localhost:5000", cfg.PredictAPIURL)
	assert.Zero(t, cfg.PredictAPITimeout)
	assert.Equal(t, 2*time.Minute, cfg.PredictAPIHeaderTimeout)
	assert.Equal(t, employee.ScaleTen, cfg.Scale)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.False(t, cfg.AuditEnabled())
	assert.False(t, cfg.ReportsEnabled())
	assert.True(t, cfg.IsDev())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PREDICT_API_URL", "https://api.example.com/")
	t.Setenv("PREDICT_API_TIMEOUT", "15s")
	t.Setenv("PREDICT_API_HEADER_TIMEOUT", "0")
	t.Setenv("PORTAL_SCALE", "0-1")
	t.Setenv("SESSION_STORE", "mongo")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("REPORTS_S3_ENDPOINT", "http://minio:9000")
	t.Setenv("REPORTS_S3_USE_SSL", "yes")
	t.Setenv("SESSION_COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.PredictAPIURL)
	assert.Equal(t, 15*time.Second, cfg.PredictAPITimeout)
	assert.Zero(t, cfg.PredictAPIHeaderTimeout)
	assert.Equal(t, employee.ScaleUnit, cfg.Scale)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AuditEnabled())
	assert.True(t, cfg.ReportsEnabled())
	assert.True(t, cfg.ReportsS3UseSSL)
	assert.True(t, cfg.SessionCookieSecure)
	assert.False(t, cfg.IsDev())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"scale":      {"PORTAL_SCALE": "1-5"},
		"store":      {"SESSION_STORE": "redis"},
		"mongo uri":  {"SESSION_STORE": "mongo", "MONGO_URI": ""},
		"timeout":    {"PREDICT_API_TIMEOUT": "soon"},
		"negative":   {"PREDICT_API_TIMEOUT": "-1s"},
		"header":     {"PREDICT_API_HEADER_TIMEOUT": "-5s"},
		"bool":       {"SESSION_COOKIE_SECURE": "maybe"},
		"short csrf": {"CSRF_KEY": "short"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("PORTAL_SCALE", "")
			t.Setenv("SESSION_STORE", "")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
