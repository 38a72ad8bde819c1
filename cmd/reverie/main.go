package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mhadifilms/reverie/internal/catalog"
	catalogsqlite "github.com/mhadifilms/reverie/internal/catalog/sqlite"
	"github.com/mhadifilms/reverie/internal/cleanup"
	"github.com/mhadifilms/reverie/internal/config"
	"github.com/mhadifilms/reverie/internal/fetch"
	"github.com/mhadifilms/reverie/internal/http/rest"
	"github.com/mhadifilms/reverie/internal/logctx"
	"github.com/mhadifilms/reverie/internal/notifier"
	"github.com/mhadifilms/reverie/internal/queue"
	"github.com/mhadifilms/reverie/internal/resolve"
	"github.com/mhadifilms/reverie/internal/store"
	"github.com/mhadifilms/reverie/internal/telemetry"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	logger := slog.New(logctx.NewTraceHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
	))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("reverie starting...", "log_level", cfg.LogLevel)

	if err := run(logctx.WithLogger(ctx, logger), cfg); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to start telemetry: %w", err)
	}

	if cfg.Telemetry.Enabled {
		if err := otelruntime.Start(otelruntime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
			logger.Warn("failed to start runtime instrumentation", "err", err)
		}
	}

	// =========================================================================
	// Start Database
	database, err := catalogsqlite.InitDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open track database: %w", err)
	}
	defer database.Close()

	bus := catalog.NewBroadcaster()
	defer bus.Close()

	repo := catalog.NewPublishingRepository(
		catalogsqlite.NewInstrumentedTrackRepository(database, tel),
		bus,
	)

	// =========================================================================
	// Start Download Pipeline
	resolver := resolve.NewInstrumentedResolver(resolve.NewClient(cfg.ResolverBaseURL, cfg.ResolveTimeout), tel)
	fetcher := fetch.NewInstrumentedFetcher(fetch.NewHTTPFetcher(cfg.FetchTimeout), tel)
	writer := store.NewFileWriter(cfg.MusicDir)

	orch := queue.NewOrchestrator(ctx, repo, resolver, fetcher, writer, tel, cfg.MaxConcurrent, cfg.MaxRetries)
	defer orch.Close()

	// =========================================================================
	// Start Notification
	setupNotifications(ctx, orch, cfg)

	// =========================================================================
	// Start Cleanup
	setupCleanup(ctx, repo, cfg)

	// =========================================================================
	// Start API Service
	serverErrors := make(chan error, 1)

	server := setupServer(ctx, repo, orch, tel, cfg)

	go func() {
		logger.Info("initializing API support", "host", cfg.Web.BindAddress)
		serverErrors <- server.ListenAndServe()
	}()

	logger.Info("waiting for downloads...",
		"music_dir", cfg.MusicDir,
		"max_concurrent", cfg.MaxConcurrent,
		"max_retries", cfg.MaxRetries,
	)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to gracefully shutdown the server", "err", err)

			if err = server.Close(); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
		}

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown telemetry", "err", err)
		}

		return nil
	}
}

func setupNotifications(ctx context.Context, orch *queue.Orchestrator, cfg *config.Config) {
	logger := logctx.LoggerFromContext(ctx)

	var notif notifier.Notifier
	if cfg.DiscordWebhookURL != "" {
		notif = &notifier.DiscordNotifier{WebhookURL: cfg.DiscordWebhookURL}
	}

	go func() {
		for track := range orch.OnDownloadFinished {
			logger.Info("track download finished", "source_id", track.SourceID, "title", track.Title)

			if notif == nil {
				continue
			}

			if notifyErr := notif.Notify(
				"✅ Downloaded: " + track.Artist + " - " + track.Title,
			); notifyErr != nil {
				logger.Error("failed to send notification", "source_id", track.SourceID, "err", notifyErr)
			}
		}
	}()

	go func() {
		for failure := range orch.OnDownloadFailed {
			logger.Error("track download failed", "source_id", failure.Track.SourceID, "err", failure.Err)

			if notif == nil {
				continue
			}

			if notifyErr := notif.Notify(
				"❌ Download failed: " + failure.Track.Artist + " - " + failure.Track.Title,
			); notifyErr != nil {
				logger.Error("failed to send notification", "source_id", failure.Track.SourceID, "err", notifyErr)
			}
		}
	}()
}

func setupCleanup(ctx context.Context, repo catalog.TrackRepository, cfg *config.Config) {
	logger := logctx.LoggerFromContext(ctx)

	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("cleanup goroutine shutting down")

				return
			case <-ticker.C:
				tracks, err := repo.All()
				if err != nil {
					logger.Error("failed to list tracks for cleanup", "err", err)

					continue
				}

				if err := cleanup.SweepOrphans(ctx, tracks, cfg.MusicDir); err != nil {
					logger.Error("failed to sweep orphaned files", "err", err)
				}
			}
		}
	}()
}

func setupServer(ctx context.Context, repo catalog.TrackRepository, orch *queue.Orchestrator, tel *telemetry.Telemetry, cfg *config.Config) *http.Server {
	handler := rest.NewDownloadHandler(repo, orch, tel)

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	r.Handle("/metrics", tel.Handler())

	return &http.Server{
		Addr:         cfg.Web.BindAddress,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		Handler:      r,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
