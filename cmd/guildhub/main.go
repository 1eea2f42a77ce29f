package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guildhub/internal/analytics"
	"guildhub/internal/bot"
	"guildhub/internal/config"
	"guildhub/internal/dashboard"
	"guildhub/internal/discordapi"
	"guildhub/internal/documentstore"
	"guildhub/internal/embeds"
	"guildhub/internal/modules/access"
	"guildhub/internal/modules/audit"
	"guildhub/internal/modules/automod"
	"guildhub/internal/modules/autorole"
	"guildhub/internal/modules/greeting"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	docs, err := documentstore.Open(openCtx, documentstore.Options{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		DSN:    cfg.Store.DSN,
	})
	cancelOpen()
	if err != nil {
		logger.Fatal("storage init failed", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	store := storage.New(docs)
	defer store.Close()

	auditLogger := audit.NewLogger(store, logger, cfg.Embeds.AuditRetention)
	analyticsSvc := analytics.New(store)

	botSvc, err := bot.New(cfg, logger, store)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}
	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	apiClient := discordapi.NewClient(nil)
	gate := permissions.NewGate(apiClient)
	directory := botSvc.Directory()
	publisher := embeds.NewPublisher(gate, store, botSvc, directory, auditLogger, logger)

	var server *dashboard.Server
	if cfg.Dashboard.Enabled {
		server = dashboard.New(cfg.Dashboard, logger, dashboard.Deps{
			OAuth:     discordapi.NewOAuth(cfg.Dashboard.ClientID, cfg.Dashboard.ClientSecret, cfg.Dashboard.CallbackURL(), apiClient),
			Identity:  apiClient,
			Gate:      gate,
			Directory: directory,
			Store:     store,
			Publisher: publisher,
			Greeting:  greeting.New(gate, store, auditLogger),
			Automod:   automod.New(gate, store, auditLogger),
			Autorole:  autorole.New(gate, store, directory, auditLogger),
			Access:    access.New(gate, store, auditLogger),
			Analytics: analyticsSvc,
			Audit:     auditLogger,
		})
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("dashboard server error", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if server != nil {
		_ = server.Shutdown(ctx)
	}
	botSvc.Close(ctx)
}
