package embeds

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"guildhub/internal/apperr"
	"guildhub/internal/buttons"
	"guildhub/internal/validate"
)

// Fields are already sanitized, resolved and parsed.
type Fields struct {
	Title       string
	Description string
	Color       int
	Thumbnail   string
	Image       string
	Footer      string
	Timestamp   bool
	Buttons     []buttons.Descriptor
}

func Assemble(f Fields, now time.Time) (*discordgo.MessageSend, error) {
	if f.Title == "" {
		return nil, apperr.Validation(apperr.CodeMissingRequiredField, "title", "title is required")
	}
	if f.Description == "" {
		return nil, apperr.Validation(apperr.CodeMissingRequiredField, "description", "description is required")
	}
	if len(f.Buttons) > buttons.MaxButtons {
		return nil, apperr.Validation(apperr.CodeTooManyButtons, "buttons", "at most 5 buttons are allowed")
	}

	embed := &discordgo.MessageEmbed{
		Title:       f.Title,
		Description: f.Description,
		Color:       f.Color,
	}
	if f.Thumbnail != "" {
		if !validate.URL(f.Thumbnail) {
			return nil, apperr.Validation(apperr.CodeInvalidMediaURL, "thumbnail", "thumbnail must be an http or https URL")
		}
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: f.Thumbnail}
	}
	if f.Image != "" {
		if !validate.URL(f.Image) {
			return nil, apperr.Validation(apperr.CodeInvalidMediaURL, "image", "image must be an http or https URL")
		}
		embed.Image = &discordgo.MessageEmbedImage{URL: f.Image}
	}
	if f.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: f.Footer}
	}
	if f.Timestamp {
		embed.Timestamp = now.UTC().Format(time.RFC3339)
	}

	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if row := buttonRow(f.Buttons); row != nil {
		msg.Components = []discordgo.MessageComponent{*row}
	}
	return msg, nil
}

func buttonRow(descs []buttons.Descriptor) *discordgo.ActionsRow {
	if len(descs) == 0 {
		return nil
	}
	row := &discordgo.ActionsRow{}
	for _, desc := range descs {
		button := discordgo.Button{
			Label: desc.Label,
			Style: discordgo.LinkButton,
			URL:   desc.URL,
		}
		if desc.Emoji != nil {
			button.Emoji = &discordgo.ComponentEmoji{
				Name:     desc.Emoji.Name,
				ID:       desc.Emoji.ID,
				Animated: desc.Emoji.Animated,
			}
		}
		row.Components = append(row.Components, button)
	}
	return row
}
