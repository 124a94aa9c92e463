package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/bot"
	"github.com/pradiptars/clan-storage-bot/internal/health"
	"github.com/pradiptars/clan-storage-bot/internal/notify"
	"github.com/pradiptars/clan-storage-bot/internal/repository"
	"github.com/pradiptars/clan-storage-bot/internal/service"
	"github.com/pradiptars/clan-storage-bot/pkg/cache"
	"github.com/pradiptars/clan-storage-bot/pkg/config"
	"github.com/pradiptars/clan-storage-bot/pkg/logger"
	"github.com/pradiptars/clan-storage-bot/pkg/metrics"
	"github.com/pradiptars/clan-storage-bot/pkg/ratelimit"
	"github.com/pradiptars/clan-storage-bot/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	m := metrics.New()

	store := buildStore(ctx, cfg, loc, m, logr)

	sender := notify.NewWebhookClient(cfg.Discord.WebhookURL, cfg.Discord.PageDelay, logr)

	if err := notify.SendTest(ctx, sender, time.Now().In(loc)); err != nil {
		logr.Warn("webhook test failed, notifications may not work", zap.Error(err))
	} else {
		logr.Info("webhook connection verified")
	}

	itemSvc := service.NewItemService(service.ItemServiceParams{
		Store:         store,
		Transport:     sender,
		Validator:     validator.New(),
		Cache:         cache.New(cfg.Cache.TTL),
		Metrics:       m,
		Logger:        logr,
		RetentionDays: cfg.Items.RetentionDays,
		HorizonDays:   cfg.Items.HorizonDays,
		Location:      loc,
	})

	batcher := notify.NewBatcher(cfg.Items.PageSize, cfg.Items.HorizonDays)
	alertSvc := service.NewAlertService(itemSvc, batcher, sender, m, logr)

	b, err := bot.New(bot.Params{
		Config:        cfg.Discord,
		Items:         itemSvc,
		Alerts:        alertSvc,
		Sender:        sender,
		Batcher:       batcher,
		Limiter:       ratelimit.New(cfg.RateLimit.MaxCalls, cfg.RateLimit.Window),
		Metrics:       m,
		Logger:        logr,
		CheckInterval: cfg.Items.CheckInterval,
	})
	if err != nil {
		logr.Fatal("failed to build bot", zap.Error(err))
	}

	if cfg.Health.Enabled {
		healthSrv := health.New(cfg, store, m, logr)
		go healthSrv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = healthSrv.Shutdown(shutdownCtx)
		}()
	}

	logr.Info("starting clan storage bot", zap.String("env", cfg.Env))
	if err := b.Start(ctx); err != nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if derr := sender.Deliver(notifyCtx, notify.ErrorPayload(time.Now().In(loc), err.Error(), "bot startup")); derr != nil {
			logr.Warn("error notification failed", zap.Error(derr))
		}
		cancel()
		logr.Fatal("bot terminated", zap.Error(err))
	}
	logr.Info("bot shutdown complete")
}

// buildStore wires the primary spreadsheet backend and the SQLite fallback.
// Either may fail to initialise as long as the other is available.
func buildStore(ctx context.Context, cfg *config.Config, loc *time.Location, m *metrics.Metrics, logr *zap.Logger) *repository.FallbackStore {
	var primary repository.ItemStore
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsStore, err := repository.NewSheetsStore(ctx, cfg.Sheets, loc, logr)
		if err != nil {
			logr.Warn("google sheets unavailable", zap.Error(err))
		} else {
			primary = sheetsStore
		}
	}

	var secondary repository.ItemStore
	if cfg.SQLite.Path != "" {
		sqliteStore, err := repository.NewSQLiteStore(cfg.SQLite.Path, loc, logr)
		if err != nil {
			logr.Warn("sqlite fallback unavailable", zap.Error(err))
		} else {
			secondary = sqliteStore
		}
	}

	if primary == nil && secondary == nil {
		logr.Fatal("no storage backend available")
	}

	var policy retry.Policy
	if cfg.Retry.Enabled {
		policy = retry.Policy{Attempts: cfg.Retry.Attempts, Delay: cfg.Retry.Delay}
	}

	return repository.NewFallbackStore(primary, secondary, policy, logr, m.StorageFallbacks)
}
