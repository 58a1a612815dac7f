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

	"github.com/lalith-99/heartfelt/internal/api"
	"github.com/lalith-99/heartfelt/internal/cache"
	"github.com/lalith-99/heartfelt/internal/config"
	"github.com/lalith-99/heartfelt/internal/jobs"
	"github.com/lalith-99/heartfelt/internal/notify"
	"github.com/lalith-99/heartfelt/internal/observ"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"github.com/lalith-99/heartfelt/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Config and logger
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ctx is cancelled on SIGINT/SIGTERM and drives every background loop.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 2. Storage
	// ---------------------------------------------------------------
	repos, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	// ---------------------------------------------------------------
	// 3. Progress cache. Redis is optional; without it every progress
	//    read goes to the database.
	// ---------------------------------------------------------------
	var progressCache cache.ProgressCache = cache.NopCache{}
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, progress cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			progressCache = cache.NewRedisProgressCache(client, cfg.ProgressCacheTTL, logger)
			logger.Info("progress cache enabled", zap.Duration("ttl", cfg.ProgressCacheTTL))
		}
	}

	// ---------------------------------------------------------------
	// 4. Live feed and notifications
	// ---------------------------------------------------------------
	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	httpClient := &http.Client{Timeout: cfg.NotifyTimeout}
	slack := notify.NewSlackNotifier(repos.slack, notify.SlackConfig{
		WebhookURL: cfg.SlackWebhookURL,
		Channel:    cfg.SlackChannel,
	}, httpClient, logger)
	line := notify.NewLineNotifier(cfg.LineChannelAccessToken, cfg.LineAPIURL, httpClient)
	dispatcher := notify.NewDispatcher(cfg.NotifyTimeout, logger, slack, line)
	defer dispatcher.Wait()

	// ---------------------------------------------------------------
	// 5. Services
	// ---------------------------------------------------------------
	ledger := service.NewLedgerService(service.LedgerConfig{
		Messages:   repos.messages,
		Users:      repos.users,
		Cache:      progressCache,
		Feed:       hub,
		Dispatcher: dispatcher,
		AppURL:     cfg.AppURL,
		Logger:     logger,
	})
	goals := service.NewGoalService(repos.goals, progressCache, hub, logger)
	progress := service.NewProgressService(repos.goals, repos.messages, progressCache, logger)
	library := service.NewLibraryService(repos.library, logger)
	motivations := service.NewMotivationService(repos.motivations, logger)

	// A fresh install starts with the default goal so the dashboard has
	// something to fill. Failing here is not fatal.
	if created, err := goals.EnsureDefault(ctx); err != nil {
		logger.Warn("ensure default goal failed", zap.Error(err))
	} else if created {
		logger.Info("default goal created",
			zap.String("name", service.DefaultGoalName),
			zap.Int("required_points", service.DefaultGoalPoints),
		)
	}

	announcer := jobs.NewGoalAnnouncer(progress, slack, hub, logger)
	if cfg.GoalAnnounceSchedule != "" {
		c, err := announcer.Start(cfg.GoalAnnounceSchedule, cfg.NotifyTimeout)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	// ---------------------------------------------------------------
	// 6. HTTP server
	// ---------------------------------------------------------------
	router := api.NewRouter(api.RouterConfig{
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}, api.Handlers{
		Health:   api.NewHealthHandler(repos.pinger, logger),
		Auth:     api.NewAuthHandler(repos.users, cfg.JWTSecret, cfg.JWTTTL, logger),
		Messages: api.NewMessageHandler(ledger, logger),
		Goals:    api.NewGoalHandler(goals, progress, logger),
		Library:  api.NewLibraryHandler(library, logger),
		Users:    api.NewUserHandler(repos.users, logger),
		Settings: api.NewSettingsHandler(repos.slack, slack, logger),
		WS:       api.NewWSHandler(hub, cfg.JWTSecret, cfg.CORSOrigins, logger),

		Motivations: api.NewMotivationHandler(motivations, logger),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting Heartfelt",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// WebSocket connections are hijacked and not tracked by Shutdown; the
	// hub closes them when ctx is cancelled.
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
