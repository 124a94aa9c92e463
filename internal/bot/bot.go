// Package bot wires the Discord gateway to the item and alert services:
// slash-command registration, interaction handlers and the daily expiry
// scheduler.
package bot

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/notify"
	"github.com/pradiptars/clan-storage-bot/internal/service"
	"github.com/pradiptars/clan-storage-bot/pkg/config"
	"github.com/pradiptars/clan-storage-bot/pkg/metrics"
	"github.com/pradiptars/clan-storage-bot/pkg/ratelimit"
)

// Bot owns the gateway session and its handlers.
type Bot struct {
	session *discordgo.Session
	cfg     config.DiscordConfig

	items   *service.ItemService
	alerts  *service.AlertService
	sender  *notify.WebhookClient
	batcher *notify.Batcher
	limiter *ratelimit.Limiter
	metrics *metrics.Metrics
	logger  *zap.Logger

	authorized    map[string]struct{}
	checkInterval time.Duration
	pageDelay     time.Duration

	schedulerOnce sync.Once
	ctx           context.Context
}

// Params collects the bot dependencies.
type Params struct {
	Config        config.DiscordConfig
	Items         *service.ItemService
	Alerts        *service.AlertService
	Sender        *notify.WebhookClient
	Batcher       *notify.Batcher
	Limiter       *ratelimit.Limiter
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	CheckInterval time.Duration
}

// New builds the bot and its gateway session. The session is not opened yet.
func New(p Params) (*Bot, error) {
	session, err := discordgo.New("Bot " + p.Config.Token)
	if err != nil {
		return nil, err
	}

	// Slash commands need no privileged intents.
	session.Identify.Intents = discordgo.IntentsGuilds

	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.CheckInterval <= 0 {
		p.CheckInterval = 24 * time.Hour
	}

	authorized := make(map[string]struct{}, len(p.Config.AuthorizedUsers))
	for _, id := range p.Config.AuthorizedUsers {
		authorized[id] = struct{}{}
	}

	b := &Bot{
		session:       session,
		cfg:           p.Config,
		items:         p.Items,
		alerts:        p.Alerts,
		sender:        p.Sender,
		batcher:       p.Batcher,
		limiter:       p.Limiter,
		metrics:       p.Metrics,
		logger:        p.Logger,
		authorized:    authorized,
		checkInterval: p.CheckInterval,
		pageDelay:     p.Config.PageDelay,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)

	return b, nil
}

// Start opens the gateway connection and registers the slash commands. It
// blocks until ctx is cancelled, then closes the session after a best-effort
// shutdown notification.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx = ctx

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		_ = b.session.Close()
		return err
	}

	<-ctx.Done()

	// Best-effort shutdown notification; failure is swallowed.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.sender.Deliver(shutdownCtx, notify.ShutdownPayload(b.items.Now())); err != nil {
		b.logger.Warn("shutdown notification failed", zap.Error(err))
	}

	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("bot logged in",
		zap.String("username", r.User.Username),
		zap.Int("guilds", len(r.Guilds)),
	)

	if err := b.sender.Deliver(b.ctx, notify.StartupPayload(b.items.Now())); err != nil {
		b.logger.Warn("startup notification failed", zap.Error(err))
	}

	// The expiry check only starts once the gateway is ready; Ready fires
	// again on reconnect, so the scheduler is started exactly once.
	b.schedulerOnce.Do(func() {
		go b.runScheduler(b.ctx)
	})
}

func (b *Bot) isAuthorized(userID string) bool {
	_, ok := b.authorized[userID]
	return ok
}
