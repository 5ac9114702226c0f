package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iyunix/go-chatarchive/internal/changefeed"
	"github.com/iyunix/go-chatarchive/internal/config"
	"github.com/iyunix/go-chatarchive/internal/debounce"
	"github.com/iyunix/go-chatarchive/internal/handlers"
	"github.com/iyunix/go-chatarchive/internal/middleware"
	"github.com/iyunix/go-chatarchive/internal/ratelimit"
	"github.com/iyunix/go-chatarchive/internal/repository/archive"
	"github.com/iyunix/go-chatarchive/internal/repository/forwardlog"
	"github.com/iyunix/go-chatarchive/internal/repository/message"
	"github.com/iyunix/go-chatarchive/internal/repository/user"
	"github.com/iyunix/go-chatarchive/internal/services"
	"github.com/iyunix/go-chatarchive/internal/services/archive_services"
	"github.com/iyunix/go-chatarchive/internal/services/telegram"
	"github.com/iyunix/go-chatarchive/internal/services/user_services"
	"github.com/iyunix/go-chatarchive/internal/storage"
	"github.com/iyunix/go-chatarchive/internal/vault"
	"github.com/iyunix/go-chatarchive/web"
)

func main() {
	cfg := config.Load()
	logger := services.NewLogger("chatarchive", cfg.LogLevel, cfg.LogFile)

	db, err := storage.OpenDatabase(cfg.DatabaseURL, cfg.SQLitePath, strings.EqualFold(cfg.LogLevel, "debug"))
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	logger.Info("archive store ready", "driver", storage.Driver(cfg.DatabaseURL))

	ctx, stopRelay := context.WithCancel(context.Background())
	defer stopRelay()

	// --- Change feed ---
	hub := changefeed.NewHub(logger)
	if cfg.RedisURL != "" {
		client, err := storage.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Redis Error: %v", err)
		}
		defer client.Close()
		relay := changefeed.NewRedisRelay(client, cfg.RedisChannel, hub, logger)
		hub.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("change feed relay stopped", "error", err)
			}
		}()
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(db)
	archiveRepo := archive.NewArchiveRepository(db, hub)
	messageRepo := message.NewMessageRepository(db)
	forwardLogRepo := forwardlog.NewForwardLogRepository(db)

	// --- Services ---
	gateway, err := telegram.NewBotAPIProvider(&telegram.Config{
		Endpoint: cfg.TelegramAPIEndpoint,
		Timeout:  cfg.TelegramTimeout,
		Debug:    !cfg.IsProduction() && strings.EqualFold(cfg.LogLevel, "debug"),
	}, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize messaging gateway: %v", err)
	}

	sealer := vault.New(cfg.CredentialKey)
	if !sealer.Enabled() {
		logger.Warn("CREDENTIAL_KEY not set; bot credentials are stored unsealed")
	}

	session := archive_services.SessionFunc(middleware.UserIDFromContext)
	authService := user_services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)
	archiveService := archive_services.NewArchiveService(archiveRepo, gateway, session, sealer, debounce.New(cfg.ValidationDebounce), logger)
	messageService := archive_services.NewMessageService(archiveRepo, messageRepo, forwardLogRepo, gateway, session, sealer, logger)
	profileService := archive_services.NewProfileService(logger)

	// --- Handlers ---
	renderer, err := handlers.NewRenderer(web.Templates, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to parse templates: %v", err)
	}
	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		log.Fatalf("FATAL: Failed to open static assets: %v", err)
	}
	secure := cfg.IsProduction()

	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer limiter.Close()

	feed := handlers.NewFeedHandler(archiveService, hub, logger)

	router := handlers.NewRouter(handlers.Routes{
		Pages:    handlers.NewPageHandler(renderer, profileService, int(cfg.ValidationDebounce.Milliseconds()), secure),
		Auth:     handlers.NewAuthHandler(authService, renderer, logger, secure),
		Archives: handlers.NewArchiveHandler(archiveService, messageService, logger, secure),
		Feed:     feed,
		Profile:  handlers.NewProfileHandler(profileService, secure),
		Logs:     handlers.NewLogHandler(logger),
		Tokens:   authService,
		Limiter:  limiter,
		Static:   static,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(feed.Close)

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	stopRelay()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped")
}
