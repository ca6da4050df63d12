// Command site-server serves Contentful pages, blog content and the
// newsletter endpoint over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/contentful-site/internal/config"
	"github.com/Sternrassler/contentful-site/internal/server"
	"github.com/Sternrassler/contentful-site/pkg/blog"
	"github.com/Sternrassler/contentful-site/pkg/cache"
	"github.com/Sternrassler/contentful-site/pkg/content"
	"github.com/Sternrassler/contentful-site/pkg/contentful"
	"github.com/Sternrassler/contentful-site/pkg/logging"
	"github.com/Sternrassler/contentful-site/pkg/mapper"
	"github.com/Sternrassler/contentful-site/pkg/page"
	"github.com/Sternrassler/contentful-site/pkg/pagination"
	"github.com/Sternrassler/contentful-site/pkg/ratelimit"
	"github.com/Sternrassler/contentful-site/pkg/seo"
	"github.com/Sternrassler/contentful-site/pkg/subscribe"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	redisPingTimeout = 5 * time.Second
	warmTimeout      = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "site-server",
		Short:         "Contentful-backed site API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.AddCommand(newServeCommand())
	return root
}

func newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "listen port (overrides PORT)")
	return cmd
}

// app holds the wired services and the resources that need closing.
type app struct {
	server *server.Server
	blog   *blog.Service
	store  subscribe.Store
	redis  *redis.Client
	logger zerolog.Logger
}

// newApp wires configuration into services. Redis is connected and pinged
// when REDIS_URL is set.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{logger: logger}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			_ = a.redis.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	}

	ccfg := contentful.DefaultConfig(cfg.Contentful.SpaceID, cfg.Contentful.AccessToken)
	ccfg.PreviewAccessToken = cfg.Contentful.PreviewAccessToken
	ccfg.Environment = cfg.Contentful.Environment
	ccfg.RateLimit = cfg.Contentful.RateLimit
	ccfg.GraphQLURL = cfg.Contentful.GraphQLURL
	ccfg.DeliveryURL = cfg.Contentful.DeliveryURL
	ccfg.PreviewURL = cfg.Contentful.PreviewURL
	if a.redis != nil {
		ccfg.RateLimiter = ratelimit.NewTracker(a.redis, logger)
	}

	client, err := contentful.New(ccfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create contentful client: %w", err)
	}

	site := seo.Site{BaseURL: cfg.Site.URL, Name: cfg.Site.Name}

	pageCache := cache.New[*content.Page](cache.Config{
		Name:     "page",
		Capacity: cfg.Cache.Capacity,
		TTL:      cfg.Cache.PageTTL,
	})
	entriesCache := cache.New[*contentful.EntryCollection](cache.Config{
		Name:     "entries",
		Capacity: cfg.Cache.Capacity,
		TTL:      cfg.Cache.TTL,
	})
	entryCache := cache.New[*contentful.Entry](cache.Config{
		Name:     "entry",
		Capacity: cfg.Cache.Capacity,
		TTL:      cfg.Cache.TTL,
	})
	cached := contentful.NewCachedClient(client, entriesCache, entryCache)

	a.store, err = openStore(cfg, a.redis, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	pages := page.New(client, pageCache, site, logger)
	a.blog = blog.New(cached, pagination.NewBatchFetcher(pagination.DefaultConfig()), site, logger)

	a.server = server.New(server.Deps{
		Config:     cfg,
		Pages:      pages,
		Blog:       a.blog,
		Newsletter: subscribe.NewService(a.store, logger),
		Redis:      a.redis,
	}, logger)

	a.warm(ctx, cached)
	return a, nil
}

// warm loads the category list and the first page of posts into the entries
// cache, using the same parameters as the blog service listing queries.
// Failures are logged; the server starts regardless.
func (a *app) warm(ctx context.Context, cached *contentful.CachedClient) {
	ctx, cancel := context.WithTimeout(ctx, warmTimeout)
	defer cancel()

	start := time.Now()
	_, err := cached.Prefetch(ctx, []contentful.PrefetchQuery{
		{
			ContentType: mapper.ContentTypeCategory,
			Query:       url.Values{"order": {"fields.name"}, "limit": {strconv.Itoa(blog.CategoryListLimit)}},
		},
		{
			ContentType: mapper.ContentTypeBlogPost,
			Query: url.Values{
				"order":   {"-sys.createdAt"},
				"limit":   {strconv.Itoa(blog.DefaultListLimit)},
				"skip":    {"0"},
				"include": {"2"},
			},
		},
	})
	if err != nil {
		a.logger.Warn().Err(err).Msg("Cache warm-up failed")
		return
	}
	a.logger.Info().Dur("duration", time.Since(start)).Msg("Cache warmed")
}

func openStore(cfg *config.Config, redisClient *redis.Client, logger zerolog.Logger) (subscribe.Store, error) {
	switch cfg.Subscribers.Backend {
	case config.BackendRedis:
		if redisClient == nil {
			return nil, errors.New("subscriber_backend redis requires REDIS_URL")
		}
		return subscribe.NewRedisStore(redisClient), nil
	case config.BackendLevelDB:
		store, err := subscribe.OpenLevelDBStore(cfg.Subscribers.LevelDBPath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return subscribe.NewLogStore(logger), nil
	}
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close subscriber store")
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, cfg *config.Config) error {
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(cfg.Log.Level)
	logCfg.Pretty = cfg.Log.Pretty
	logger := logging.Setup(logCfg)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	srv := a.server.NewHTTPServer(":" + strconv.Itoa(cfg.Server.Port))

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("environment", cfg.Contentful.Environment).
			Bool("redis", a.redis != nil).
			Str("subscriber_backend", cfg.Subscribers.Backend).
			Msg("Starting site server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
