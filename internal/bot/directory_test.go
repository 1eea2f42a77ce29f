package bot

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stateGuild = "111111111111111111"
	restGuild  = "999999999999999999"
)

func newTestDirectory(t *testing.T) *Directory {
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	httpmock.ActivateNonDefault(session.Client)
	t.Cleanup(httpmock.DeactivateAndReset)

	require.NoError(t, session.State.GuildAdd(&discordgo.Guild{
		ID:   stateGuild,
		Name: "State Guild",
		Channels: []*discordgo.Channel{
			{ID: "c-voice", Name: "voice", Type: discordgo.ChannelTypeGuildVoice, Position: 0},
			{ID: "c-news", Name: "news", Type: discordgo.ChannelTypeGuildNews, Position: 2},
			{ID: "c-text", Name: "general", Type: discordgo.ChannelTypeGuildText, Position: 1},
			{ID: "c-cat", Name: "category", Type: discordgo.ChannelTypeGuildCategory, Position: 3},
		},
		Roles: []*discordgo.Role{
			{ID: stateGuild, Name: "@everyone", Position: 0},
			{ID: "r-mod", Name: "mod", Position: 2},
			{ID: "r-member", Name: "member", Position: 1},
		},
	}))
	return NewDirectory(session, time.Minute)
}

func TestListGuildChannelsFromState(t *testing.T) {
	dir := newTestDirectory(t)
	channels, err := dir.ListGuildChannels(context.Background(), stateGuild)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "c-text", channels[0].ID)
	assert.Equal(t, "c-news", channels[1].ID)

	ok, err := dir.HasChannel(context.Background(), stateGuild, "c-voice")
	require.NoError(t, err)
	assert.False(t, ok, "voice channels cannot receive embeds")
}

func TestListGuildRolesSkipsEveryone(t *testing.T) {
	dir := newTestDirectory(t)
	roles, err := dir.ListGuildRoles(context.Background(), stateGuild)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "r-mod", roles[0].ID)
	assert.Equal(t, "r-member", roles[1].ID)

	ok, _ := dir.HasRole(context.Background(), stateGuild, stateGuild)
	assert.False(t, ok)
}

func TestListGuildChannelsFallsBackToRESTAndCaches(t *testing.T) {
	dir := newTestDirectory(t)
	httpmock.RegisterResponder("GET", discordgo.EndpointGuildChannels(restGuild),
		httpmock.NewStringResponder(200, `[{"id":"c1","name":"general","type":0,"position":0},{"id":"c2","name":"voice","type":2,"position":1}]`))

	channels, err := dir.ListGuildChannels(context.Background(), restGuild)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "c1", channels[0].ID)

	_, err = dir.ListGuildChannels(context.Background(), restGuild)
	require.NoError(t, err)
	assert.Equal(t, 1, httpmock.GetTotalCallCount(), "second listing should come from the cache")

	dir.Invalidate(restGuild)
	_, _ = dir.ListGuildChannels(context.Background(), restGuild)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestIsMemberOf(t *testing.T) {
	dir := newTestDirectory(t)
	httpmock.RegisterResponder("GET", discordgo.EndpointGuild(restGuild),
		httpmock.NewStringResponder(http.StatusForbidden, `{"message":"Missing Access","code":50001}`))

	member, err := dir.IsMemberOf(context.Background(), stateGuild)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = dir.IsMemberOf(context.Background(), restGuild)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestListGuilds(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.session.State.GuildAdd(&discordgo.Guild{ID: "222222222222222222", Name: "Another"}))

	guilds, err := dir.ListGuilds(context.Background())
	require.NoError(t, err)
	require.Len(t, guilds, 2)
	assert.Equal(t, "Another", guilds[0].Name)
	assert.Equal(t, 2, dir.guildCount())
}

func TestChannelAndRoleEventsRefreshListings(t *testing.T) {
	dir := newTestDirectory(t)
	b := &Bot{directory: dir}
	ctx := context.Background()

	ok, err := dir.HasChannel(ctx, stateGuild, "c-fresh")
	require.NoError(t, err)
	assert.False(t, ok)

	fresh := &discordgo.Channel{ID: "c-fresh", GuildID: stateGuild, Name: "fresh", Type: discordgo.ChannelTypeGuildText, Position: 5}
	require.NoError(t, dir.session.State.ChannelAdd(fresh))
	ok, _ = dir.HasChannel(ctx, stateGuild, "c-fresh")
	assert.False(t, ok, "listing is still cached")

	b.onChannelCreate(dir.session, &discordgo.ChannelCreate{Channel: fresh})
	ok, err = dir.HasChannel(ctx, stateGuild, "c-fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = dir.ListGuildRoles(ctx, stateGuild)
	require.NoError(t, err)
	role := &discordgo.Role{ID: "r-fresh", Name: "fresh", Position: 3}
	require.NoError(t, dir.session.State.RoleAdd(stateGuild, role))
	b.onRoleCreate(dir.session, &discordgo.GuildRoleCreate{GuildRole: &discordgo.GuildRole{GuildID: stateGuild, Role: role}})
	ok, err = dir.HasRole(ctx, stateGuild, "r-fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, httpmock.GetTotalCallCount(), "state guilds never hit REST")
}
