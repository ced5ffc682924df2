package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cerveza-fortuna/cicerone-engine/pkg/catalog"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/config"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/handlers"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/llm"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/logging"
	mcpserver "github.com/cerveza-fortuna/cicerone-engine/pkg/mcp"
	mcptools "github.com/cerveza-fortuna/cicerone-engine/pkg/mcp/tools"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/services"
	"github.com/cerveza-fortuna/cicerone-engine/pkg/sessions"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "cicerone-engine: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting cicerone-engine",
		zap.String("version", cfg.Version),
		zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog: scraper behind the TTL/fallback snapshot store.
	scraper, err := catalog.NewScraper(catalog.ScraperConfig{
		URL:        cfg.Catalog.URL,
		Timeout:    cfg.Catalog.RequestTimeout(),
		MaxRetries: cfg.Catalog.MaxRetries,
	}, logger)
	if err != nil {
		return fmt.Errorf("create scraper: %w", err)
	}
	catalogStore := catalog.NewStore(catalog.StoreConfig{
		TTL:          cfg.Catalog.TTL(),
		FetchTimeout: cfg.Catalog.RequestTimeout(),
		CacheDir:     cfg.Catalog.CacheDir,
	}, scraper, logger)

	// Warm the snapshot so the first customer doesn't wait on the scrape.
	if _, err := catalogStore.Get(ctx); err != nil {
		logger.Warn("Initial catalog fetch failed, continuing with fallback", zap.Error(err))
	}

	// Session store.
	var sessionStore sessions.Store
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisStore, err := sessions.NewRedisStore(ctx, sessions.RedisConfig{
			Addr:        cfg.Session.RedisAddr,
			Password:    cfg.Session.RedisPassword,
			DB:          cfg.Session.RedisDB,
			IdleTimeout: cfg.Session.IdleTimeout(),
		}, logger)
		if err != nil {
			return fmt.Errorf("connect session redis: %w", err)
		}
		defer func() { _ = redisStore.Close() }()
		sessionStore = redisStore
	default:
		sessionStore = sessions.NewMemoryStore(cfg.Session.IdleTimeout(), logger)
	}

	// Services.
	pairingSvc, err := services.NewPairingService(catalogStore, logger)
	if err != nil {
		return fmt.Errorf("create pairing service: %w", err)
	}
	catalogSvc := services.NewCatalogService(catalogStore, pairingSvc, logger)
	preferenceSvc := services.NewPreferenceService(catalogSvc, logger)
	recommendationSvc := services.NewRecommendationService(catalogSvc, logger)

	// Product links hang off the site root, not the catalog listing page.
	catalogURL, err := url.Parse(cfg.Catalog.URL)
	if err != nil {
		return fmt.Errorf("parse catalog url: %w", err)
	}
	storeURL := catalogURL.Scheme + "://" + catalogURL.Host
	salesSvc := services.NewSalesService(catalogSvc, storeURL, logger)

	toolDeps := services.ToolDeps{
		Catalog:         catalogSvc,
		Preferences:     preferenceSvc,
		Recommendations: recommendationSvc,
		Pairings:        pairingSvc,
		Sales:           salesSvc,
		Logger:          logger,
	}

	llmClient, err := llm.NewClient(cfg.LLM, logger)
	if err != nil {
		return fmt.Errorf("create llm client: %w", err)
	}
	chatSvc := services.NewChatService(sessionStore, llmClient, toolDeps, logger)

	// MCP server with the full tool surface.
	mcpSrv := mcpserver.NewServer("cicerone-engine", cfg.Version, logger)
	mcpDeps := &mcptools.Deps{
		Catalog:         catalogSvc,
		Preferences:     preferenceSvc,
		Recommendations: recommendationSvc,
		Pairings:        pairingSvc,
		Sales:           salesSvc,
		Sessions:        sessionStore,
		Logger:          logger,
	}
	mcptools.RegisterCatalogTools(mcpSrv.MCP(), mcpDeps)
	mcptools.RegisterTastingTools(mcpSrv.MCP(), mcpDeps)
	mcptools.RegisterPairingTools(mcpSrv.MCP(), mcpDeps)
	mcptools.RegisterSalesTools(mcpSrv.MCP(), mcpDeps)

	// HTTP surface.
	cookieSecret := []byte(cfg.CookieSecret)
	if len(cookieSecret) == 0 {
		cookieSecret = make([]byte, 32)
		if _, err := rand.Read(cookieSecret); err != nil {
			return fmt.Errorf("generate cookie secret: %w", err)
		}
		logger.Warn("COOKIE_SECRET not set, using ephemeral secret; cookies won't survive restarts")
	}

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewCatalogHandler(catalogSvc, logger).RegisterRoutes(mux)
	handlers.NewChatHandler(chatSvc, sessionStore, cookieSecret, logger).RegisterRoutes(mux)
	handlers.NewTastingHandler(sessionStore, preferenceSvc, recommendationSvc, logger).RegisterRoutes(mux)
	handlers.NewPairingHandler(catalogSvc, pairingSvc, logger).RegisterRoutes(mux)
	mux.Handle("/mcp", mcpSrv.NewStreamableHTTPServer())

	addr := net.JoinHostPort(cfg.BindAddr, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
