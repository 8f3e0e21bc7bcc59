package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/ghexplorer/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/ghexplorer/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/ghexplorer/internal/adapter/driving/http"
	"github.com/ericfisherdev/ghexplorer/internal/application"
	"github.com/ericfisherdev/ghexplorer/internal/config"
	"github.com/ericfisherdev/ghexplorer/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"api_base_url", cfg.APIBaseURL,
		"oauth_configured", cfg.HasOAuthConfig(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire the session store and service.
	sessionStore := sqliteadapter.NewSessionRepo(db)
	sessions := application.NewSessionService(sessionStore)

	// 6. GitHub client factory honoring the configured API base. The factory
	// never fails for the default base; an invalid override falls back to an
	// unauthenticated default-base client rather than crashing mid-swap.
	factory := func(token string) driven.GitHubClient {
		if cfg.APIBaseURL == config.DefaultAPIBaseURL {
			return githubadapter.NewClient(token)
		}
		client, err := githubadapter.NewClientWithBaseURL(token, cfg.APIBaseURL)
		if err != nil {
			slog.Error("invalid API base URL, using default", "base_url", cfg.APIBaseURL, "error", err)
			return githubadapter.NewClient(token)
		}
		return client
	}

	// 6b. Client provider seeded with any persisted session token, hot-swapped
	// on every login and logout.
	provider := application.NewGitHubClientProvider(factory, sessions.Token(ctx))
	go provider.WatchSession(ctx, sessions)

	// 7. Application state: selection and the infinite repository feed.
	selection := application.NewSelectionState()
	feed := application.NewRepoFeed(provider)

	// 7b. OAuth service.
	oauth := application.NewOAuthService(cfg.ClientID, cfg.ClientSecret, cfg.CallbackURL, sessions, factory)
	if !cfg.HasOAuthConfig() {
		slog.Info("oauth client pair not configured, login disabled until GHEXPLORER_CLIENT_ID and GHEXPLORER_CLIENT_SECRET are set")
	}

	// 8. HTTP handler with logging and recovery middleware.
	apiHandler := httphandler.NewHandler(provider, feed, selection, sessions, oauth, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("ghexplorer started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
		return err
	}

	slog.Info("shutdown complete")
	return nil
}
