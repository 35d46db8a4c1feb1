package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipebox/internal/api"
	"recipebox/internal/config"
	"recipebox/internal/importer"
	"recipebox/internal/platform/cache"
	"recipebox/internal/platform/fetch"
	"recipebox/internal/platform/gemini"
	"recipebox/internal/platform/localllm"
	"recipebox/internal/platform/logger"
	"recipebox/internal/platform/media"
	"recipebox/internal/recipe"
	"recipebox/internal/reconcile"
	"recipebox/internal/shopping"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogMode, cfg.App.Name)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		logger.Error("Failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		logger.Info("Server listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.Model.Provider),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newServer builds the HTTP server and everything behind it. cleanup
// releases the store, cache and model clients.
func newServer(ctx context.Context, cfg *config.Config) (*http.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Cleanup failed", zap.Error(err))
			}
		}
	}
	fail := func(err error) (*http.Server, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeStore)

	gen, closeGen, err := newGenerator(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeGen)

	heuristics, err := importer.LoadHeuristics(cfg.Heuristics)
	if err != nil {
		return fail(err)
	}

	fetcher := fetch.New(fetch.Settings{
		Timeout:      cfg.Fetch.Timeout,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})

	imp := importer.New(fetcher, gen, store)
	imp.SetHeuristics(heuristics)
	imp.SetDefaultServings(cfg.Import.DefaultServings)

	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, c.Close)
		imp.Cache = c
	}

	imagesDir := ""
	if cfg.Media.Enabled {
		if err := os.MkdirAll(cfg.Media.Dir, 0o755); err != nil {
			return fail(fmt.Errorf("failed to create images directory: %w", err))
		}
		imp.Thumbnails = media.NewThumbnailer(fetcher, cfg.Media.Dir, cfg.Media.Width)
		imagesDir = cfg.Media.Dir
	}

	handler := api.NewHandler(imp, store, shopping.New(heuristics.Synonyms), gen)
	handler.ImportTimeout = cfg.Server.ImportTimeout
	handler.Version = cfg.App.Version

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		ImagesDir:      imagesDir,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return srv, cleanup, nil
}

// newStore opens Postgres when a database URL is configured and falls back
// to the in-memory store otherwise.
func newStore(cfg *config.Config) (recipe.Store, func() error, error) {
	if cfg.Database.URL == "" {
		logger.Warn("No database configured, recipes are kept in memory")
		return recipe.NewMemoryStore(), func() error { return nil }, nil
	}
	s, err := recipe.NewPostgresStore(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating postgres store: %w", err)
	}
	return s, s.Close, nil
}

// newGenerator builds the configured model provider behind the model-not-found
// fallback.
func newGenerator(ctx context.Context, cfg *config.Config) (*reconcile.FallbackGenerator, func() error, error) {
	switch cfg.Model.Provider {
	case config.ProviderLocal:
		client := localllm.NewClient(cfg.LocalLLM.BaseURL, cfg.Model.Timeout)
		gen := reconcile.NewFallbackGenerator(client, cfg.LocalLLM.Model)
		return gen, func() error { return nil }, nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.Model.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating gemini client: %w", err)
		}
		logger.Info("Using Gemini", zap.String("model", cfg.Model.Name), zap.String("api_key", config.MaskAPIKey(cfg.Model.APIKey)))
		gen := reconcile.NewFallbackGenerator(client, cfg.Model.Name)
		gen.Timeout = cfg.Model.Timeout
		return gen, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
}
