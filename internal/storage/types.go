package storage

import "time"

type MessageConfig struct {
	ChannelID string   `json:"channelId"`
	Messages  []string `json:"messages"`
	Enabled   bool     `json:"enabled"`
}

// SettingsDoc is the shared parent document of the welcome and leave
// configs.
type SettingsDoc struct {
	Welcome MessageConfig `json:"welcome"`
	Leave   MessageConfig `json:"leave"`
}

type AutomodConfig struct {
	LinkFilter    bool     `json:"linkFilter"`
	BadWordFilter bool     `json:"badWordFilter"`
	BadWords      []string `json:"badWords"`
}

type AutoroleConfig struct {
	RoleID string `json:"roleId,omitempty"`
}

// CommandAssignments maps a command name to the role or channel allowed to
// use it. Values are stored as given.
type CommandAssignments map[string]string

type RestrictedChannels []string

type EmbedRecord struct {
	ID          string    `json:"id"`
	GuildID     string    `json:"guildId"`
	ChannelID   string    `json:"channelId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Color       string    `json:"color,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Image       string    `json:"image,omitempty"`
	Footer      string    `json:"footer,omitempty"`
	Timestamp   bool      `json:"timestamp"`
	Buttons     string    `json:"buttons,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	MessageID   string    `json:"messageId"`
}

type AuditEntry struct {
	GuildID   string    `json:"guildId"`
	UserID    string    `json:"userId"`
	Level     string    `json:"level"`
	Event     string    `json:"event"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

// GuildSettings is every configuration section of one guild.
type GuildSettings struct {
	GuildID            string             `json:"guildId"`
	Welcome            MessageConfig      `json:"welcome"`
	Leave              MessageConfig      `json:"leave"`
	Automod            AutomodConfig      `json:"automod"`
	Autorole           AutoroleConfig     `json:"autorole"`
	CommandAssignments CommandAssignments `json:"commandAssignments"`
	RestrictedChannels RestrictedChannels `json:"restrictedChannels"`
}

func DefaultSettingsDoc() SettingsDoc {
	return SettingsDoc{
		Welcome: MessageConfig{Messages: []string{}},
		Leave:   MessageConfig{Messages: []string{}},
	}
}

func DefaultAutomod() AutomodConfig {
	return AutomodConfig{BadWords: []string{}}
}
