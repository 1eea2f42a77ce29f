// Package permissions decides whether a dashboard caller may configure a
// guild, based on the caller's own guild list.
package permissions

import (
	"context"

	"github.com/pkg/errors"

	"guildhub/internal/apperr"
)

const (
	PermAdministrator int64 = 0x8
	PermManageGuild   int64 = 0x20
)

type UserGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Owner       bool   `json:"owner"`
	Permissions int64  `json:"permissions,string"`
}

// ErrTokenRejected is matched by identity errors meaning the access token
// is no longer accepted.
var ErrTokenRejected = errors.New("access token rejected")

type Identity interface {
	UserGuilds(ctx context.Context, accessToken string) ([]UserGuild, error)
}

type Caller struct {
	UserID      string
	AccessToken string
}

type Decision struct {
	Allowed bool
	Guild   UserGuild
	Reason  string
}

// Authorizer is what configuration writers need from a Gate.
type Authorizer interface {
	Require(ctx context.Context, caller Caller, guildID string) (UserGuild, error)
}

type Gate struct {
	identity Identity
}

func NewGate(identity Identity) *Gate {
	return &Gate{identity: identity}
}

func CanManage(perms int64) bool {
	return perms&PermAdministrator != 0 || perms&PermManageGuild != 0
}

// Authorize looks the caller's guilds up on every call.
func (g *Gate) Authorize(ctx context.Context, caller Caller, guildID string) (Decision, error) {
	if caller.AccessToken == "" {
		return Decision{}, apperr.Unauthenticated("not logged in")
	}
	guilds, err := g.identity.UserGuilds(ctx, caller.AccessToken)
	if err != nil {
		return Decision{}, LookupError(err)
	}
	for _, guild := range guilds {
		if guild.ID != guildID {
			continue
		}
		if !CanManage(guild.Permissions) {
			return Decision{Guild: guild, Reason: "missing Manage Server permission"}, nil
		}
		return Decision{Allowed: true, Guild: guild}, nil
	}
	return Decision{Reason: "not a member of this guild"}, nil
}

// Require is Authorize with denial turned into a Forbidden error.
func (g *Gate) Require(ctx context.Context, caller Caller, guildID string) (UserGuild, error) {
	decision, err := g.Authorize(ctx, caller, guildID)
	if err != nil {
		return UserGuild{}, err
	}
	if !decision.Allowed {
		return UserGuild{}, apperr.Forbidden(decision.Reason)
	}
	return decision.Guild, nil
}

// LookupError classifies a failed guild lookup. A rejected token means the
// login is gone, anything else is an upstream failure.
func LookupError(err error) error {
	if errors.Is(err, ErrTokenRejected) {
		return apperr.Unauthenticated("session is no longer valid, log in again")
	}
	return apperr.Upstream(apperr.CodeIdentityLookupFailed, "could not fetch your guilds", err)
}

func Manageable(guilds []UserGuild) []UserGuild {
	out := make([]UserGuild, 0, len(guilds))
	for _, guild := range guilds {
		if CanManage(guild.Permissions) {
			out = append(out, guild)
		}
	}
	return out
}
