package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"guildhub/internal/storage"
)

func TestEmbedsListEmbed(t *testing.T) {
	empty := embedsListEmbed(nil)
	if !strings.Contains(empty.Description, "No embeds") {
		t.Fatalf("unexpected empty description %q", empty.Description)
	}

	var records []storage.EmbedRecord
	for i := 0; i < maxListed+3; i++ {
		records = append(records, storage.EmbedRecord{
			ID:        fmt.Sprintf("0190c0de-0000-7000-8000-%012d", i),
			Title:     fmt.Sprintf("title %d", i),
			ChannelID: "222222222222222222",
			CreatedAt: time.Unix(int64(i), 0),
		})
	}
	embed := embedsListEmbed(records)
	lines := strings.Split(embed.Description, "\n")
	if len(lines) != maxListed+1 {
		t.Fatalf("expected %d lines, got %d", maxListed+1, len(lines))
	}
	if lines[len(lines)-1] != "and 3 more" {
		t.Fatalf("unexpected overflow line %q", lines[len(lines)-1])
	}
	if !strings.Contains(lines[0], "<#222222222222222222>") || !strings.Contains(lines[0], "**title 0**") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if embed.Fields[0].Value != fmt.Sprintf("%d", maxListed+3) {
		t.Fatalf("unexpected total %q", embed.Fields[0].Value)
	}
}

func TestConfigEmbed(t *testing.T) {
	settings := storage.GuildSettings{
		GuildID:  "111111111111111111",
		Welcome:  storage.MessageConfig{ChannelID: "222222222222222222", Messages: []string{"hi"}, Enabled: true},
		Automod:  storage.AutomodConfig{LinkFilter: true, BadWords: []string{"a", "b"}},
		Autorole: storage.AutoroleConfig{RoleID: "333333333333333333"},
	}
	embed := configEmbed(settings, "https://dash.example.com/")

	values := map[string]string{}
	for _, field := range embed.Fields {
		values[field.Name] = field.Value
	}
	if values["Welcome"] != "on\n<#222222222222222222>, 1 message(s)" {
		t.Fatalf("unexpected welcome summary %q", values["Welcome"])
	}
	if values["Leave"] != "off\nno channel, 0 message(s)" {
		t.Fatalf("unexpected leave summary %q", values["Leave"])
	}
	if values["Automod"] != "links: on\nbad words: off (2)" {
		t.Fatalf("unexpected automod summary %q", values["Automod"])
	}
	if values["Autorole"] != "<@&333333333333333333>" {
		t.Fatalf("unexpected autorole %q", values["Autorole"])
	}
	if !strings.HasSuffix(embed.Description, "https://dash.example.com") {
		t.Fatalf("expected dashboard link, got %q", embed.Description)
	}
}
