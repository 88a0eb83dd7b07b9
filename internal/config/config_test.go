package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("TRUST_PROXY", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.Equal(t, 587, cfg.MailPort)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.EventsEnabled())
}

func TestLoadFromDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("STORE_BACKEND=redis\nREDIS_DB=3\nCORS_ALLOWED_ORIGINS=http://a.com, http://b.com\n"), 0o600))

	// godotenv não sobrescreve o que já está no ambiente.
	t.Setenv("STORE_BACKEND", "")
	os.Unsetenv("STORE_BACKEND")
	t.Setenv("REDIS_DB", "")
	os.Unsetenv("REDIS_DB")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	os.Unsetenv("CORS_ALLOWED_ORIGINS")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"http://a.com", "http://b.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.env")

	t.Run("backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "dynamo")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "STORE_BACKEND")
	})

	t.Run("postgres without url", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("port", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "memory")
		t.Setenv("MAIL_PORT", "abc")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "MAIL_PORT")
	})

	t.Run("trust proxy", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "memory")
		t.Setenv("TRUST_PROXY", "talvez")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "TRUST_PROXY")
	})

	t.Run("driver", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "memory")
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load(missing)
		assert.ErrorContains(t, err, "DB_DRIVER")
	})
}

func TestLoadTrustProxy(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, cfg.TrustProxy)
}
