package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "pages", cfg.MinIO.Bucket)
	assert.Equal(t, 600, cfg.LLM.MaxTokens)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, cfg.Redis.Host, cfg.Jobs.RedisAddr)
	assert.Empty(t, cfg.Jobs.AutoPublishCron)
	assert.Equal(t, "https://localhost:8080", cfg.Site.BaseURL())
	assert.Equal(t, time.UTC, cfg.Site.Location())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SITE_HOST", "pages.example.com")
	t.Setenv("SITE_ALIAS_HOST", "www.pages.example.com")
	t.Setenv("CDN_RATE_LIMIT", "2.5")
	t.Setenv("LLM_TIMEOUT", "3s")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("AUTO_PUBLISH_CRON", "*/15 * * * *")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("SITE_TIME_ZONE", "America/Los_Angeles")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pages.example.com", cfg.Site.BaseURL())
	assert.Equal(t, "www.pages.example.com", cfg.Site.AliasHost)
	assert.Equal(t, 2.5, cfg.CDN.RateLimit)
	assert.Equal(t, 3*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, "*/15 * * * *", cfg.Jobs.AutoPublishCron)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "America/Los_Angeles", cfg.Site.Location().String())
}

func TestLoadInvalidDBPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	t.Setenv("DB_PASSWORD", "s3cret")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SITE_HOST")

	t.Setenv("SITE_HOST", "pages.example.com")
	_, err = Load()
	assert.NoError(t, err)
}

func TestValidateRejectsBadSite(t *testing.T) {
	t.Setenv("SITE_SCHEME", "ftp")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SITE_SCHEME", "https")
	t.Setenv("SITE_HOST", "https://pages.example.com")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("SITE_HOST", "pages.example.com")
	t.Setenv("SITE_TIME_ZONE", "Pacific/Nowhere")
	_, err = Load()
	assert.ErrorContains(t, err, "SITE_TIME_ZONE")
}
