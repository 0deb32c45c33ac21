package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-nutricare/internal/config"
	"ai-nutricare/internal/database"
	"ai-nutricare/internal/gateway"
	"ai-nutricare/internal/logging"
	"ai-nutricare/internal/report"
	"ai-nutricare/internal/session"
	"ai-nutricare/internal/storage"
	"ai-nutricare/internal/telegram"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load(os.Getenv("NUTRICARE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.RequireTelegram(); err != nil {
		logger.Fatal("telegram is not configured", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize the identity database
	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	kv := storage.NewSQLiteKV(db.SQL, "chat")
	identities := func(chatID int64) *session.Manager {
		return session.NewManager(kv.Namespace(fmt.Sprintf("chat:%d", chatID)))
	}

	// 3. Initialize the analysis gateway and report exporter
	analyzer := gateway.NewClient(cfg, logger)
	exporter := report.NewExporter()

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, analyzer, exporter, identities, logger)
	if err != nil {
		logger.Fatal("failed to initialize telegram bot", zap.Error(err))
	}

	// 5. Start Server with Graceful Shutdown
	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		logger.Info("telegram bot server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	if cfg.Telegram.WebhookURL == "" {
		logger.Info("no webhook configured, long polling")
		go bot.Poll(ctx)
	}

	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}
