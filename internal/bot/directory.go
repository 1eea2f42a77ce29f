package bot

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
)

type GuildInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	MemberCount int    `json:"memberCount"`
}

type Channel struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Type     discordgo.ChannelType `json:"type"`
	Position int                   `json:"position"`
}

type Role struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
	Managed  bool   `json:"managed"`
}

// Directory answers questions about the guilds the bot is in. Reads go to
// the gateway state first and fall back to REST; listings are cached.
type Directory struct {
	session *discordgo.Session
	cache   *cache.Cache
}

func NewDirectory(session *discordgo.Session, ttl time.Duration) *Directory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Directory{session: session, cache: cache.New(ttl, 2*ttl)}
}

func (d *Directory) Invalidate(guildID string) {
	d.cache.Delete("channels:" + guildID)
	d.cache.Delete("roles:" + guildID)
}

func (d *Directory) guildCount() int {
	d.session.State.RLock()
	defer d.session.State.RUnlock()
	return len(d.session.State.Guilds)
}

func (d *Directory) ListGuilds(ctx context.Context) ([]GuildInfo, error) {
	d.session.State.RLock()
	out := make([]GuildInfo, 0, len(d.session.State.Guilds))
	for _, guild := range d.session.State.Guilds {
		out = append(out, GuildInfo{ID: guild.ID, Name: guild.Name, Icon: guild.Icon, MemberCount: guild.MemberCount})
	}
	d.session.State.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (d *Directory) IsMemberOf(ctx context.Context, guildID string) (bool, error) {
	if _, err := d.session.State.Guild(guildID); err == nil {
		return true, nil
	}
	_, err := d.session.Guild(guildID, discordgo.WithContext(ctx))
	if err == nil {
		return true, nil
	}
	if isMissing(err) {
		return false, nil
	}
	return false, err
}

func (d *Directory) LeaveGuild(ctx context.Context, guildID string) error {
	if err := d.session.GuildLeave(guildID, discordgo.WithContext(ctx)); err != nil {
		return errors.Wrap(err, "leave guild")
	}
	d.Invalidate(guildID)
	return nil
}

// ListGuildChannels returns the text and announcement channels by position.
func (d *Directory) ListGuildChannels(ctx context.Context, guildID string) ([]Channel, error) {
	if cached, ok := d.cache.Get("channels:" + guildID); ok {
		return cached.([]Channel), nil
	}

	raw := d.stateChannels(guildID)
	if len(raw) == 0 {
		fetched, err := d.session.GuildChannels(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, errors.Wrap(err, "fetch guild channels")
		}
		raw = fetched
	}

	out := make([]Channel, 0, len(raw))
	for _, channel := range raw {
		if channel.Type != discordgo.ChannelTypeGuildText && channel.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		out = append(out, Channel{ID: channel.ID, Name: channel.Name, Type: channel.Type, Position: channel.Position})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })

	d.cache.SetDefault("channels:"+guildID, out)
	return out, nil
}

// ListGuildRoles leaves out @everyone, whose id is the guild id.
func (d *Directory) ListGuildRoles(ctx context.Context, guildID string) ([]Role, error) {
	if cached, ok := d.cache.Get("roles:" + guildID); ok {
		return cached.([]Role), nil
	}

	raw := d.stateRoles(guildID)
	if len(raw) == 0 {
		fetched, err := d.session.GuildRoles(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return nil, errors.Wrap(err, "fetch guild roles")
		}
		raw = fetched
	}

	out := make([]Role, 0, len(raw))
	for _, role := range raw {
		if role.ID == guildID {
			continue
		}
		out = append(out, Role{ID: role.ID, Name: role.Name, Color: role.Color, Position: role.Position, Managed: role.Managed})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position > out[j].Position })

	d.cache.SetDefault("roles:"+guildID, out)
	return out, nil
}

// stateChannels copies the guild's channels out of the gateway state. The
// slice is only read under the state lock.
func (d *Directory) stateChannels(guildID string) []*discordgo.Channel {
	guild, err := d.session.State.Guild(guildID)
	if err != nil {
		return nil
	}
	d.session.State.RLock()
	defer d.session.State.RUnlock()
	return append([]*discordgo.Channel(nil), guild.Channels...)
}

func (d *Directory) stateRoles(guildID string) []*discordgo.Role {
	guild, err := d.session.State.Guild(guildID)
	if err != nil {
		return nil
	}
	d.session.State.RLock()
	defer d.session.State.RUnlock()
	return append([]*discordgo.Role(nil), guild.Roles...)
}

func (d *Directory) HasChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	channels, err := d.ListGuildChannels(ctx, guildID)
	if err != nil {
		return false, err
	}
	for _, channel := range channels {
		if channel.ID == channelID {
			return true, nil
		}
	}
	return false, nil
}

func (d *Directory) HasRole(ctx context.Context, guildID, roleID string) (bool, error) {
	roles, err := d.ListGuildRoles(ctx, guildID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func isMissing(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound || restErr.Response.StatusCode == http.StatusForbidden
}
