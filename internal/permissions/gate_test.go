package permissions

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildhub/internal/apperr"
)

type fakeIdentity struct {
	guilds []UserGuild
	err    error
	calls  int
}

func (f *fakeIdentity) UserGuilds(ctx context.Context, token string) ([]UserGuild, error) {
	f.calls++
	return f.guilds, f.err
}

func TestAuthorizeBits(t *testing.T) {
	cases := []struct {
		name  string
		perms int64
		allow bool
	}{
		{"none", 0, false},
		{"send messages only", 0x800, false},
		{"administrator", 0x8, true},
		{"manage guild", 0x20, true},
		{"both", 0x28, true},
		{"manage guild among others", 0x20 | 0x400 | 0x800, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			identity := &fakeIdentity{guilds: []UserGuild{{ID: "g1", Permissions: tc.perms}}}
			decision, err := NewGate(identity).Authorize(context.Background(), Caller{AccessToken: "tok"}, "g1")
			require.NoError(t, err)
			assert.Equal(t, tc.allow, decision.Allowed)
			if !tc.allow {
				assert.NotEmpty(t, decision.Reason)
			}
		})
	}
}

func TestAuthorizeUnknownGuildIsDenied(t *testing.T) {
	identity := &fakeIdentity{guilds: []UserGuild{{ID: "g1", Permissions: 0x8}}}
	decision, err := NewGate(identity).Authorize(context.Background(), Caller{AccessToken: "tok"}, "g2")
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestAuthorizeIsNotCached(t *testing.T) {
	identity := &fakeIdentity{guilds: []UserGuild{{ID: "g1", Permissions: 0x8}}}
	gate := NewGate(identity)
	for i := 0; i < 3; i++ {
		_, _ = gate.Authorize(context.Background(), Caller{AccessToken: "tok"}, "g1")
	}
	assert.Equal(t, 3, identity.calls)

	identity.guilds[0].Permissions = 0
	decision, _ := gate.Authorize(context.Background(), Caller{AccessToken: "tok"}, "g1")
	assert.False(t, decision.Allowed, "revoked permission must take effect immediately")
}

func TestAuthorizeLookupFailure(t *testing.T) {
	identity := &fakeIdentity{err: errors.New("discord down")}
	_, err := NewGate(identity).Authorize(context.Background(), Caller{AccessToken: "tok"}, "g1")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeIdentityLookupFailed, apperr.CodeOf(err))
	assert.Equal(t, 500, apperr.As(err).Status())
}

func TestRequire(t *testing.T) {
	identity := &fakeIdentity{guilds: []UserGuild{{ID: "g1", Name: "Guild", Permissions: 0x20}, {ID: "g2"}}}
	gate := NewGate(identity)

	guild, err := gate.Require(context.Background(), Caller{AccessToken: "tok"}, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Guild", guild.Name)

	_, err = gate.Require(context.Background(), Caller{AccessToken: "tok"}, "g2")
	require.Error(t, err)
	assert.Equal(t, 403, apperr.As(err).Status())

	_, err = gate.Require(context.Background(), Caller{}, "g1")
	assert.Equal(t, 401, apperr.As(err).Status())
}

func TestManageable(t *testing.T) {
	guilds := []UserGuild{{ID: "a", Permissions: 0x8}, {ID: "b"}, {ID: "c", Permissions: 0x20}, {ID: "d", Owner: true}}
	got := Manageable(guilds)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestAuthorizeRejectedToken(t *testing.T) {
	identity := &fakeIdentity{err: errors.Wrap(ErrTokenRejected, "users/@me/guilds")}
	_, err := NewGate(identity).Require(context.Background(), Caller{AccessToken: "stale"}, "g1")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeNoSession, apperr.CodeOf(err))
	assert.Equal(t, 401, apperr.As(err).Status())

	identity.err = errors.New("connection reset")
	_, err = NewGate(identity).Require(context.Background(), Caller{AccessToken: "tok"}, "g1")
	assert.Equal(t, apperr.CodeIdentityLookupFailed, apperr.CodeOf(err))
}
