package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"guildhub/internal/colors"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const (
	colorInfo  = colors.Default
	colorError = 0xed4245
	maxListed  = 20
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := interaction.ApplicationCommandData()
	if data.Name != "embeds" && data.Name != "config" {
		return
	}
	if interaction.GuildID == "" || interaction.Member == nil {
		b.respondEmbed(session, interaction, commandEmbed("Guildhub", "This command only works inside a server.", colorError, nil), true)
		return
	}
	if !permissions.CanManage(interaction.Member.Permissions) {
		b.respondEmbed(session, interaction, commandEmbed("Guildhub", "You need the Manage Server permission.", colorError, nil), true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch data.Name {
	case "embeds":
		records, err := b.store.Embeds(ctx, interaction.GuildID)
		if err != nil {
			b.logger.Warn("list embeds failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
			b.respondEmbed(session, interaction, commandEmbed("Embeds", "The settings store is unavailable, try again later.", colorError, nil), true)
			return
		}
		b.respondEmbed(session, interaction, embedsListEmbed(records), true)
	case "config":
		settings, err := b.store.GuildSettings(ctx, interaction.GuildID)
		if err != nil {
			b.logger.Warn("read settings failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
			b.respondEmbed(session, interaction, commandEmbed("Configuration", "The settings store is unavailable, try again later.", colorError, nil), true)
			return
		}
		b.respondEmbed(session, interaction, configEmbed(settings, b.cfg.Dashboard.PublicURL), true)
	}
}

func embedsListEmbed(records []storage.EmbedRecord) *discordgo.MessageEmbed {
	if len(records) == 0 {
		return commandEmbed("Embeds", "No embeds yet. Create one from the dashboard.", colorInfo, nil)
	}

	var lines []string
	for i, rec := range records {
		if i == maxListed {
			lines = append(lines, fmt.Sprintf("and %d more", len(records)-maxListed))
			break
		}
		lines = append(lines, fmt.Sprintf("`%s` **%s** in <#%s>", shortID(rec.ID), rec.Title, rec.ChannelID))
	}
	return commandEmbed("Embeds", strings.Join(lines, "\n"), colorInfo, []*discordgo.MessageEmbedField{
		{Name: "Total", Value: fmt.Sprintf("%d", len(records)), Inline: true},
	})
}

func configEmbed(settings storage.GuildSettings, dashboardURL string) *discordgo.MessageEmbed {
	autorole := "not set"
	if settings.Autorole.RoleID != "" {
		autorole = "<@&" + settings.Autorole.RoleID + ">"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Welcome", Value: messageSummary(settings.Welcome), Inline: true},
		{Name: "Leave", Value: messageSummary(settings.Leave), Inline: true},
		{Name: "Automod", Value: fmt.Sprintf("links: %s\nbad words: %s (%d)", onOff(settings.Automod.LinkFilter), onOff(settings.Automod.BadWordFilter), len(settings.Automod.BadWords)), Inline: true},
		{Name: "Autorole", Value: autorole, Inline: true},
		{Name: "Restricted channels", Value: fmt.Sprintf("%d", len(settings.RestrictedChannels)), Inline: true},
	}
	description := "Current server configuration."
	if dashboardURL != "" {
		description += " Edit it at " + strings.TrimSuffix(dashboardURL, "/")
	}
	return commandEmbed("Configuration", description, colorInfo, fields)
}

func messageSummary(cfg storage.MessageConfig) string {
	channel := "no channel"
	if cfg.ChannelID != "" {
		channel = "<#" + cfg.ChannelID + ">"
	}
	return fmt.Sprintf("%s\n%s, %d message(s)", onOff(cfg.Enabled), channel, len(cfg.Messages))
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
	if err != nil {
		b.logger.Warn("interaction response failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}
}
