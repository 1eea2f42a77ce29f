package bot

import (
	"context"
	"time"

	"guildhub/internal/config"
	"guildhub/internal/metrics"
	"guildhub/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	session   *discordgo.Session
	directory *Directory
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds
	session.StateEnabled = true

	ttl := time.Duration(cfg.Cache.ChannelTTLSeconds) * time.Second
	return &Bot{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		session:   session,
		directory: NewDirectory(session, ttl),
	}, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onGuildCreate)
	b.session.AddHandler(b.onGuildDelete)
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onChannelCreate)
	b.session.AddHandler(b.onChannelUpdate)
	b.session.AddHandler(b.onChannelDelete)
	b.session.AddHandler(b.onRoleCreate)
	b.session.AddHandler(b.onRoleUpdate)
	b.session.AddHandler(b.onRoleDelete)

	if err := b.session.Open(); err != nil {
		return err
	}

	return b.registerCommands()
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) Directory() *Directory {
	return b.directory
}

// SendMessage posts msg and returns the new message id.
func (b *Bot) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (string, error) {
	sent, err := b.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return sent.ID, nil
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", event.User.Username), zap.Int("guilds", len(event.Guilds)))
	metrics.GuildsTotal.Set(float64(len(event.Guilds)))
}

func (b *Bot) onGuildCreate(session *discordgo.Session, event *discordgo.GuildCreate) {
	if event.Guild == nil {
		return
	}
	b.directory.Invalidate(event.ID)
	b.logger.Info("guild available", zap.String("guild_id", event.ID), zap.String("name", event.Name))
	metrics.GuildsTotal.Set(float64(b.directory.guildCount()))
}

func (b *Bot) onGuildDelete(session *discordgo.Session, event *discordgo.GuildDelete) {
	if event.Guild == nil {
		return
	}
	b.directory.Invalidate(event.ID)
	if event.Unavailable {
		b.logger.Warn("guild unavailable", zap.String("guild_id", event.ID))
		return
	}
	b.logger.Info("removed from guild", zap.String("guild_id", event.ID))
	metrics.GuildsTotal.Set(float64(b.directory.guildCount()))
}

// Channel and role events drop the cached listings so a freshly created
// channel or role is accepted right away.

func (b *Bot) onChannelCreate(session *discordgo.Session, event *discordgo.ChannelCreate) {
	if event.Channel != nil && event.GuildID != "" {
		b.directory.Invalidate(event.GuildID)
	}
}

func (b *Bot) onChannelUpdate(session *discordgo.Session, event *discordgo.ChannelUpdate) {
	if event.Channel != nil && event.GuildID != "" {
		b.directory.Invalidate(event.GuildID)
	}
}

func (b *Bot) onChannelDelete(session *discordgo.Session, event *discordgo.ChannelDelete) {
	if event.Channel != nil && event.GuildID != "" {
		b.directory.Invalidate(event.GuildID)
	}
}

func (b *Bot) onRoleCreate(session *discordgo.Session, event *discordgo.GuildRoleCreate) {
	if event.GuildRole != nil {
		b.directory.Invalidate(event.GuildID)
	}
}

func (b *Bot) onRoleUpdate(session *discordgo.Session, event *discordgo.GuildRoleUpdate) {
	if event.GuildRole != nil {
		b.directory.Invalidate(event.GuildID)
	}
}

func (b *Bot) onRoleDelete(session *discordgo.Session, event *discordgo.GuildRoleDelete) {
	b.directory.Invalidate(event.GuildID)
}
