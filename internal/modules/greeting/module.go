package greeting

import (
	"context"
	"strconv"
	"strings"

	"guildhub/internal/apperr"
	"guildhub/internal/metrics"
	"guildhub/internal/modules/audit"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
	"guildhub/internal/validate"
)

const MaxMessages = 10

// MessagePatch carries the fields to change. Nil keeps the stored value.
type MessagePatch struct {
	ChannelID *string   `json:"channelId"`
	Messages  *[]string `json:"messages"`
	Enabled   *bool     `json:"enabled"`
}

type Module struct {
	gate  permissions.Authorizer
	store *storage.Store
	audit *audit.Logger
}

func New(gate permissions.Authorizer, store *storage.Store, auditLogger *audit.Logger) *Module {
	return &Module{gate: gate, store: store, audit: auditLogger}
}

func (m *Module) UpdateWelcome(ctx context.Context, caller permissions.Caller, guildID string, patch MessagePatch) (storage.MessageConfig, error) {
	return m.update(ctx, caller, guildID, "welcome", patch)
}

func (m *Module) UpdateLeave(ctx context.Context, caller permissions.Caller, guildID string, patch MessagePatch) (storage.MessageConfig, error) {
	return m.update(ctx, caller, guildID, "leave", patch)
}

func (m *Module) update(ctx context.Context, caller permissions.Caller, guildID, half string, patch MessagePatch) (storage.MessageConfig, error) {
	cfg, err := m.write(ctx, caller, guildID, half, patch)
	metrics.ConfigUpdates.WithLabelValues(half, metrics.Outcome(err)).Inc()
	return cfg, err
}

func (m *Module) write(ctx context.Context, caller permissions.Caller, guildID, half string, patch MessagePatch) (storage.MessageConfig, error) {
	if _, err := m.gate.Require(ctx, caller, guildID); err != nil {
		return storage.MessageConfig{}, err
	}
	if !validate.Snowflake(guildID) {
		return storage.MessageConfig{}, apperr.Validation(apperr.CodeInvalidSnowflake, "guildId", "guild id must be 17 to 19 digits")
	}

	var channelID string
	if patch.ChannelID != nil {
		channelID = strings.TrimSpace(*patch.ChannelID)
		if channelID != "" && !validate.Snowflake(channelID) {
			return storage.MessageConfig{}, apperr.Validation(apperr.CodeInvalidSnowflake, "channelId", "channel id must be 17 to 19 digits")
		}
	}
	var messages []string
	if patch.Messages != nil {
		cleaned, err := cleanMessages(*patch.Messages)
		if err != nil {
			return storage.MessageConfig{}, err
		}
		messages = cleaned
	}

	doc, err := m.store.Settings(ctx, guildID)
	if err != nil {
		return storage.MessageConfig{}, storage.Classify(err)
	}

	target := &doc.Welcome
	if half == "leave" {
		target = &doc.Leave
	}
	if patch.ChannelID != nil {
		target.ChannelID = channelID
	}
	if patch.Messages != nil {
		target.Messages = messages
	}
	if patch.Enabled != nil {
		target.Enabled = *patch.Enabled
	}
	if target.Enabled && target.ChannelID == "" {
		return storage.MessageConfig{}, apperr.Validation(apperr.CodeMissingRequiredField, "channelId", "a channel is required to enable "+half+" messages")
	}

	if err := m.store.SaveSettings(ctx, guildID, doc); err != nil {
		return storage.MessageConfig{}, storage.Classify(err)
	}
	m.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, half+".update",
		"channel="+target.ChannelID+" messages="+strconv.Itoa(len(target.Messages))+" enabled="+strconv.FormatBool(target.Enabled))
	return *target, nil
}

func cleanMessages(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, message := range raw {
		if cleaned := validate.SanitizeText(message); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	if len(out) > MaxMessages {
		return nil, apperr.Validation(apperr.CodeInvalidField, "messages", "at most "+strconv.Itoa(MaxMessages)+" messages are allowed")
	}
	return out, nil
}
