package storage

import (
	"strings"

	"github.com/pkg/errors"
)

type Section string

const (
	SectionSettings           Section = "settings"
	SectionAutomod            Section = "automod"
	SectionAutorole           Section = "autorole"
	SectionCommandAssignments Section = "commandAssignments"
	SectionRestrictedChannels Section = "restrictedChannels"
	SectionEmbeds             Section = "embeds"
	SectionAuditLog           Section = "auditLog"
)

var knownSections = map[Section]bool{
	SectionSettings:           true,
	SectionAutomod:            true,
	SectionAutorole:           true,
	SectionCommandAssignments: true,
	SectionRestrictedChannels: true,
	SectionEmbeds:             true,
	SectionAuditLog:           true,
}

// Key addresses one document. SubKey is only used below the embeds section.
type Key struct {
	GuildID string
	Section Section
	SubKey  string
}

func (k Key) Path() string {
	path := "guilds/" + k.GuildID + "/" + string(k.Section)
	if k.SubKey != "" {
		path += "/" + k.SubKey
	}
	return path
}

func (k Key) String() string { return k.Path() }

func ParseKey(path string) (Key, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 3 || len(parts) > 4 || parts[0] != "guilds" || parts[1] == "" {
		return Key{}, errors.Errorf("malformed document path %q", path)
	}
	key := Key{GuildID: parts[1], Section: Section(parts[2])}
	if !knownSections[key.Section] {
		return Key{}, errors.Errorf("unknown section %q in %q", parts[2], path)
	}
	if len(parts) == 4 {
		if parts[3] == "" || key.Section != SectionEmbeds {
			return Key{}, errors.Errorf("unexpected sub key in %q", path)
		}
		key.SubKey = parts[3]
	}
	return key, nil
}

func embedKey(guildID, embedID string) Key {
	return Key{GuildID: guildID, Section: SectionEmbeds, SubKey: embedID}
}

func guildPrefix(guildID string) string {
	return "guilds/" + guildID + "/"
}
