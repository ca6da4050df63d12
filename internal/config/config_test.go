package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	v.Set("contentful_space_id", "space")
	v.Set("contentful_access_token", "token")
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.Contentful.Environment)
	assert.Equal(t, 50, cfg.Contentful.RateLimit)
	assert.Equal(t, "https://example.com", cfg.Site.URL)
	assert.Equal(t, "Site Name", cfg.Site.Name)
	assert.Equal(t, "en-US", cfg.Site.Locale)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 100, cfg.Cache.Capacity)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, time.Minute, cfg.Cache.PageTTL)
	assert.Equal(t, BackendLog, cfg.Subscribers.Backend)
	assert.Equal(t, "./data/subscribers", cfg.Subscribers.LevelDBPath)
	assert.False(t, cfg.Features.EnableComments)
	assert.False(t, cfg.PreviewEnabled())
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("CONTENTFUL_SPACE_ID", "env-space")
	t.Setenv("CONTENTFUL_ACCESS_TOKEN", "env-token")
	t.Setenv("SITE_URL", "https://blog.test/")
	t.Setenv("ENABLE_SEARCH", "true")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("DEFAULT_LOCALE", "de-de")
	t.Setenv("CONTENTFUL_PREVIEW_SECRET", "s3cret")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "env-space", cfg.Contentful.SpaceID)
	assert.Equal(t, "env-token", cfg.Contentful.AccessToken)
	assert.Equal(t, "https://blog.test", cfg.Site.URL)
	assert.True(t, cfg.Features.EnableSearch)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "de-DE", cfg.Site.Locale)
	assert.True(t, cfg.PreviewEnabled())
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{"missing space", map[string]any{"contentful_space_id": ""}, "CONTENTFUL_SPACE_ID"},
		{"missing token", map[string]any{"contentful_access_token": ""}, "CONTENTFUL_ACCESS_TOKEN"},
		{"bad port", map[string]any{"port": 0}, "port must be between"},
		{"bad capacity", map[string]any{"cache_capacity": 0}, "cache_capacity"},
		{"bad ttl", map[string]any{"cache_ttl": "0s"}, "must be positive"},
		{"negative rate", map[string]any{"contentful_rate_limit": -1}, "contentful_rate_limit"},
		{"bad locale", map[string]any{"default_locale": "not a locale"}, "invalid default_locale"},
		{"unknown backend", map[string]any{"subscriber_backend": "mailchimp"}, "unknown subscriber_backend"},
		{"redis without url", map[string]any{"subscriber_backend": "redis"}, "requires REDIS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromViper(newViper(tt.values))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromViper_MissingRequiredIsSentinel(t *testing.T) {
	_, err := FromViper(newViper(map[string]any{"contentful_space_id": "", "contentful_access_token": ""}))
	assert.ErrorIs(t, err, ErrMissingRequired)
	assert.Contains(t, err.Error(), "CONTENTFUL_SPACE_ID, CONTENTFUL_ACCESS_TOKEN")
}

func TestFromViper_RedisBackend(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]any{
		"subscriber_backend": "Redis",
		"redis_url":          "redis://localhost:6379/0",
	}))
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Subscribers.Backend)
}
