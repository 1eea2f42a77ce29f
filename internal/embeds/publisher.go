// Package embeds builds embed messages and keeps the stored embed records
// of a guild in step with the messages posted for them.
package embeds

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"guildhub/internal/apperr"
	"guildhub/internal/buttons"
	"guildhub/internal/colors"
	"guildhub/internal/metrics"
	"guildhub/internal/modules/audit"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
	"guildhub/internal/validate"
)

type Messenger interface {
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (string, error)
}

type Directory interface {
	IsMemberOf(ctx context.Context, guildID string) (bool, error)
	HasChannel(ctx context.Context, guildID, channelID string) (bool, error)
}

type Auditor interface {
	Log(ctx context.Context, level, guildID, userID, event, details string)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Input struct {
	ChannelID   string `json:"channelId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Thumbnail   string `json:"thumbnail"`
	Image       string `json:"image"`
	Footer      string `json:"footer"`
	Timestamp   bool   `json:"timestamp"`
	Buttons     string `json:"buttons"`
}

// Patch holds the fields to change. Nil keeps the stored value.
type Patch struct {
	ChannelID   *string `json:"channelId"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Thumbnail   *string `json:"thumbnail"`
	Image       *string `json:"image"`
	Footer      *string `json:"footer"`
	Timestamp   *bool   `json:"timestamp"`
	Buttons     *string `json:"buttons"`
}

type Result struct {
	EmbedID   string `json:"embedId"`
	MessageID string `json:"messageId"`
	ChannelID string `json:"channelId"`
}

type Publisher struct {
	gate      permissions.Authorizer
	store     *storage.Store
	messenger Messenger
	directory Directory
	audit     Auditor
	logger    *zap.Logger
	clock     Clock
	newID     func() (string, error)
}

func NewPublisher(gate permissions.Authorizer, store *storage.Store, messenger Messenger, directory Directory, auditor Auditor, logger *zap.Logger) *Publisher {
	return &Publisher{
		gate:      gate,
		store:     store,
		messenger: messenger,
		directory: directory,
		audit:     auditor,
		logger:    logger,
		clock:     realClock{},
		newID:     newEmbedID,
	}
}

func (p *Publisher) WithClock(clock Clock) {
	p.clock = clock
}

func newEmbedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (p *Publisher) Create(ctx context.Context, caller permissions.Caller, guildID string, in Input) (Result, error) {
	res, err := p.create(ctx, caller, guildID, in)
	metrics.EmbedOperations.WithLabelValues("create", metrics.Outcome(err)).Inc()
	return res, err
}

func (p *Publisher) create(ctx context.Context, caller permissions.Caller, guildID string, in Input) (Result, error) {
	if _, err := p.gate.Require(ctx, caller, guildID); err != nil {
		return Result{}, err
	}

	now := p.clock.Now().UTC()
	rec := storage.EmbedRecord{
		GuildID:     guildID,
		ChannelID:   in.ChannelID,
		Title:       in.Title,
		Description: in.Description,
		Color:       in.Color,
		Thumbnail:   in.Thumbnail,
		Image:       in.Image,
		Footer:      in.Footer,
		Timestamp:   in.Timestamp,
		Buttons:     in.Buttons,
		CreatedBy:   caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	rec, msg, err := p.prepare(rec, now)
	if err != nil {
		return Result{}, err
	}
	if err := p.checkTarget(ctx, rec.GuildID, rec.ChannelID); err != nil {
		return Result{}, err
	}

	id, err := p.newID()
	if err != nil {
		return Result{}, apperr.Upstream(apperr.CodePersistFailed, "could not allocate an embed id", err)
	}
	rec.ID = id

	messageID, err := p.send(ctx, caller, rec, msg, "embed.create")
	if err != nil {
		return Result{}, err
	}
	rec.MessageID = messageID

	res := Result{EmbedID: rec.ID, MessageID: messageID, ChannelID: rec.ChannelID}
	if err := p.persist(ctx, caller, rec, "embed.create"); err != nil {
		return res, err
	}
	p.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "embed.create", "embed "+rec.ID+" posted to "+rec.ChannelID)
	return res, nil
}

func (p *Publisher) Update(ctx context.Context, caller permissions.Caller, guildID, embedID string, patch Patch) (Result, error) {
	res, err := p.update(ctx, caller, guildID, embedID, patch)
	metrics.EmbedOperations.WithLabelValues("update", metrics.Outcome(err)).Inc()
	return res, err
}

func (p *Publisher) update(ctx context.Context, caller permissions.Caller, guildID, embedID string, patch Patch) (Result, error) {
	if _, err := p.gate.Require(ctx, caller, guildID); err != nil {
		return Result{}, err
	}
	existing, err := p.load(ctx, guildID, embedID)
	if err != nil {
		return Result{}, err
	}

	now := p.clock.Now().UTC()
	rec := patch.apply(existing)
	rec.UpdatedAt = now
	rec, msg, err := p.prepare(rec, now)
	if err != nil {
		return Result{}, err
	}
	if err := p.checkTarget(ctx, rec.GuildID, rec.ChannelID); err != nil {
		return Result{}, err
	}

	// The previous message is left in place; every update posts a new one.
	messageID, err := p.send(ctx, caller, rec, msg, "embed.update")
	if err != nil {
		return Result{}, err
	}
	rec.MessageID = messageID

	res := Result{EmbedID: rec.ID, MessageID: messageID, ChannelID: rec.ChannelID}
	if err := p.persist(ctx, caller, rec, "embed.update"); err != nil {
		return res, err
	}
	p.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "embed.update", "embed "+rec.ID+" reposted as "+messageID+", previous message "+existing.MessageID)
	return res, nil
}

func (p *Publisher) Delete(ctx context.Context, caller permissions.Caller, guildID, embedID string) error {
	err := p.remove(ctx, caller, guildID, embedID)
	metrics.EmbedOperations.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	return err
}

func (p *Publisher) remove(ctx context.Context, caller permissions.Caller, guildID, embedID string) error {
	if _, err := p.gate.Require(ctx, caller, guildID); err != nil {
		return err
	}
	rec, err := p.load(ctx, guildID, embedID)
	if err != nil {
		return err
	}
	if err := p.store.RemoveEmbed(ctx, guildID, embedID); err != nil {
		return storage.Classify(err)
	}
	// The posted message stays in the channel.
	p.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "embed.delete", "embed "+embedID+" removed, message "+rec.MessageID+" left in "+rec.ChannelID)
	return nil
}

func (p *Publisher) Get(ctx context.Context, caller permissions.Caller, guildID, embedID string) (storage.EmbedRecord, error) {
	if _, err := p.gate.Require(ctx, caller, guildID); err != nil {
		return storage.EmbedRecord{}, err
	}
	return p.load(ctx, guildID, embedID)
}

func (p *Publisher) List(ctx context.Context, caller permissions.Caller, guildID string) ([]storage.EmbedRecord, error) {
	if _, err := p.gate.Require(ctx, caller, guildID); err != nil {
		return nil, err
	}
	records, err := p.store.Embeds(ctx, guildID)
	if err != nil {
		return nil, storage.Classify(err)
	}
	return records, nil
}

func (p *Publisher) load(ctx context.Context, guildID, embedID string) (storage.EmbedRecord, error) {
	if strings.TrimSpace(embedID) == "" || strings.Contains(embedID, "/") {
		return storage.EmbedRecord{}, apperr.NotFound(apperr.CodeEmbedNotFound, "embed not found")
	}
	rec, found, err := p.store.Embed(ctx, guildID, embedID)
	if err != nil {
		return storage.EmbedRecord{}, storage.Classify(err)
	}
	if !found {
		return storage.EmbedRecord{}, apperr.NotFound(apperr.CodeEmbedNotFound, "embed not found")
	}
	return rec, nil
}

// prepare validates rec and builds its message. The returned record holds
// the sanitized values that get stored.
func (p *Publisher) prepare(rec storage.EmbedRecord, now time.Time) (storage.EmbedRecord, *discordgo.MessageSend, error) {
	if !validate.Snowflake(rec.GuildID) {
		return rec, nil, apperr.Validation(apperr.CodeInvalidSnowflake, "guildId", "guild id must be 17 to 19 digits")
	}
	rec.ChannelID = strings.TrimSpace(rec.ChannelID)
	if rec.ChannelID == "" {
		return rec, nil, apperr.Validation(apperr.CodeMissingRequiredField, "channelId", "channelId is required")
	}
	if !validate.Snowflake(rec.ChannelID) {
		return rec, nil, apperr.Validation(apperr.CodeInvalidSnowflake, "channelId", "channel id must be 17 to 19 digits")
	}

	rec.Thumbnail = strings.TrimSpace(rec.Thumbnail)
	rec.Image = strings.TrimSpace(rec.Image)
	if rec.Thumbnail != "" && !validate.URL(rec.Thumbnail) {
		return rec, nil, apperr.Validation(apperr.CodeInvalidMediaURL, "thumbnail", "thumbnail must be an http or https URL")
	}
	if rec.Image != "" && !validate.URL(rec.Image) {
		return rec, nil, apperr.Validation(apperr.CodeInvalidMediaURL, "image", "image must be an http or https URL")
	}

	rec.Title = validate.SanitizeText(rec.Title)
	rec.Description = validate.SanitizeText(rec.Description)
	rec.Footer = validate.SanitizeText(rec.Footer)
	rec.Color = strings.TrimSpace(rec.Color)
	rec.Buttons = strings.TrimSpace(rec.Buttons)

	descs, err := buttons.Parse(rec.Buttons)
	if err != nil {
		return rec, nil, err
	}

	msg, err := Assemble(Fields{
		Title:       rec.Title,
		Description: rec.Description,
		Color:       colors.Resolve(rec.Color),
		Thumbnail:   rec.Thumbnail,
		Image:       rec.Image,
		Footer:      rec.Footer,
		Timestamp:   rec.Timestamp,
		Buttons:     descs,
	}, now)
	if err != nil {
		return rec, nil, err
	}
	return rec, msg, nil
}

func (p *Publisher) checkTarget(ctx context.Context, guildID, channelID string) error {
	member, err := p.directory.IsMemberOf(ctx, guildID)
	if err != nil {
		return apperr.Upstream(apperr.CodeDirectoryFailed, "could not check bot membership", err)
	}
	if !member {
		return apperr.NotFound(apperr.CodeBotNotInGuild, "the bot is not in this guild")
	}
	ok, err := p.directory.HasChannel(ctx, guildID, channelID)
	if err != nil {
		return apperr.Upstream(apperr.CodeDirectoryFailed, "could not list guild channels", err)
	}
	if !ok {
		return apperr.Validation(apperr.CodeInvalidField, "channelId", "channel is not a text channel of this guild")
	}
	return nil
}

func (p *Publisher) send(ctx context.Context, caller permissions.Caller, rec storage.EmbedRecord, msg *discordgo.MessageSend, event string) (string, error) {
	messageID, err := p.messenger.SendMessage(ctx, rec.ChannelID, msg)
	if err != nil {
		p.logger.Warn("embed publish failed",
			zap.String("guild_id", rec.GuildID),
			zap.String("channel_id", rec.ChannelID),
			zap.String("embed_id", rec.ID),
			zap.Error(err),
		)
		p.audit.Log(ctx, audit.LevelWarn, rec.GuildID, caller.UserID, event+".publish_failed", err.Error())
		return "", apperr.Upstream(apperr.CodePublishFailed, "failed to send the message", err)
	}
	return messageID, nil
}

// persist stores rec after its message went out. A failure leaves the
// message live and is reported with its id.
func (p *Publisher) persist(ctx context.Context, caller permissions.Caller, rec storage.EmbedRecord, event string) error {
	err := p.store.SaveEmbed(ctx, rec)
	if err == nil {
		return nil
	}
	p.logger.Error("embed sent but not stored",
		zap.String("guild_id", rec.GuildID),
		zap.String("channel_id", rec.ChannelID),
		zap.String("embed_id", rec.ID),
		zap.String("orphaned_message_id", rec.MessageID),
		zap.Error(err),
	)
	p.audit.Log(ctx, audit.LevelCrit, rec.GuildID, caller.UserID, event+".persist_failed", "message "+rec.MessageID+" in "+rec.ChannelID+" has no stored record")
	return apperr.Upstream(apperr.CodePersistFailed, "message "+rec.MessageID+" was sent but could not be saved", err)
}

func (patch Patch) apply(rec storage.EmbedRecord) storage.EmbedRecord {
	if patch.ChannelID != nil {
		rec.ChannelID = *patch.ChannelID
	}
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Description != nil {
		rec.Description = *patch.Description
	}
	if patch.Color != nil {
		rec.Color = *patch.Color
	}
	if patch.Thumbnail != nil {
		rec.Thumbnail = *patch.Thumbnail
	}
	if patch.Image != nil {
		rec.Image = *patch.Image
	}
	if patch.Footer != nil {
		rec.Footer = *patch.Footer
	}
	if patch.Timestamp != nil {
		rec.Timestamp = *patch.Timestamp
	}
	if patch.Buttons != nil {
		rec.Buttons = *patch.Buttons
	}
	return rec
}
