// Package config loads runtime configuration from the environment, an
// optional .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Subscriber store backends.
const (
	BackendLog     = "log"
	BackendRedis   = "redis"
	BackendLevelDB = "leveldb"
)

// ErrMissingRequired is returned when a required key is unset.
var ErrMissingRequired = errors.New("missing required configuration")

// Config is the full runtime configuration.
type Config struct {
	Contentful  ContentfulConfig
	Site        SiteConfig
	Features    FeatureFlags
	Server      ServerConfig
	Log         LogConfig
	Cache       CacheConfig
	Redis       RedisConfig
	Subscribers SubscriberConfig
}

// ContentfulConfig holds the space credentials.
type ContentfulConfig struct {
	SpaceID            string
	AccessToken        string
	PreviewAccessToken string
	Environment        string
	PreviewSecret      string

	// Base URL overrides; empty means the public Contentful endpoints
	GraphQLURL  string
	DeliveryURL string
	PreviewURL  string

	// RateLimit is the outbound request budget in requests per second
	RateLimit int
}

// SiteConfig describes the public site.
type SiteConfig struct {
	URL    string
	Name   string
	Locale string
}

// FeatureFlags are exposed to the frontend through /api/config.
type FeatureFlags struct {
	EnableComments bool `json:"enableComments"`
	EnableSearch   bool `json:"enableSearch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Pretty bool
}

// CacheConfig sizes the in-process response caches.
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
	PageTTL  time.Duration
}

// RedisConfig is optional; an empty URL disables redis.
type RedisConfig struct {
	URL string
}

// SubscriberConfig selects the newsletter store.
type SubscriberConfig struct {
	Backend     string
	LevelDBPath string
}

// Load reads .env (if present), config.yaml (if present) and the
// environment, then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return FromViper(v)
}

// FromViper builds a Config from v, applying defaults and environment
// lookups.
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{
		Contentful: ContentfulConfig{
			SpaceID:            v.GetString("contentful_space_id"),
			AccessToken:        v.GetString("contentful_access_token"),
			PreviewAccessToken: v.GetString("contentful_preview_access_token"),
			Environment:        v.GetString("contentful_environment"),
			PreviewSecret:      v.GetString("contentful_preview_secret"),
			GraphQLURL:         v.GetString("contentful_graphql_url"),
			DeliveryURL:        v.GetString("contentful_delivery_url"),
			PreviewURL:         v.GetString("contentful_preview_url"),
			RateLimit:          v.GetInt("contentful_rate_limit"),
		},
		Site: SiteConfig{
			URL:    strings.TrimRight(v.GetString("site_url"), "/"),
			Name:   v.GetString("site_name"),
			Locale: v.GetString("default_locale"),
		},
		Features: FeatureFlags{
			EnableComments: v.GetBool("enable_comments"),
			EnableSearch:   v.GetBool("enable_search"),
		},
		Server: ServerConfig{
			Port:            v.GetInt("port"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Pretty: v.GetBool("log_pretty"),
		},
		Cache: CacheConfig{
			Capacity: v.GetInt("cache_capacity"),
			TTL:      v.GetDuration("cache_ttl"),
			PageTTL:  v.GetDuration("page_cache_ttl"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis_url"),
		},
		Subscribers: SubscriberConfig{
			Backend:     strings.ToLower(v.GetString("subscriber_backend")),
			LevelDBPath: v.GetString("leveldb_path"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("contentful_environment", "master")
	v.SetDefault("contentful_rate_limit", 50)
	v.SetDefault("contentful_graphql_url", "")
	v.SetDefault("contentful_delivery_url", "")
	v.SetDefault("contentful_preview_url", "")
	v.SetDefault("site_url", "https://example.com")
	v.SetDefault("site_name", "Site Name")
	v.SetDefault("default_locale", "en-US")
	v.SetDefault("enable_comments", false)
	v.SetDefault("enable_search", false)
	v.SetDefault("port", 8080)
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("cache_capacity", 100)
	v.SetDefault("cache_ttl", "60s")
	v.SetDefault("page_cache_ttl", "60s")
	v.SetDefault("subscriber_backend", BackendLog)
	v.SetDefault("leveldb_path", "./data/subscribers")
}

// Validate checks required keys and value ranges. The locale is
// canonicalized in place.
func (c *Config) Validate() error {
	var missing []string
	if c.Contentful.SpaceID == "" {
		missing = append(missing, "CONTENTFUL_SPACE_ID")
	}
	if c.Contentful.AccessToken == "" {
		missing = append(missing, "CONTENTFUL_ACCESS_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache_capacity must be >= 1 (got %d)", c.Cache.Capacity)
	}
	if c.Cache.TTL <= 0 || c.Cache.PageTTL <= 0 {
		return errors.New("cache_ttl and page_cache_ttl must be positive")
	}
	if c.Contentful.RateLimit < 0 {
		return fmt.Errorf("contentful_rate_limit must be >= 0 (got %d)", c.Contentful.RateLimit)
	}

	tag, err := language.Parse(c.Site.Locale)
	if err != nil {
		return fmt.Errorf("invalid default_locale %q: %w", c.Site.Locale, err)
	}
	c.Site.Locale = tag.String()

	switch c.Subscribers.Backend {
	case BackendLog, BackendLevelDB:
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("subscriber_backend redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown subscriber_backend %q", c.Subscribers.Backend)
	}

	return nil
}

// PreviewEnabled reports whether preview mode can be entered.
func (c *Config) PreviewEnabled() bool {
	return c.Contentful.PreviewSecret != ""
}
