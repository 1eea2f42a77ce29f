// Package access stores which roles or channels may use each command and
// which channels the bot ignores.
package access

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

const (
	MaxAssignments        = 100
	MaxRestrictedChannels = 500
)

type Module struct {
	gate  permissions.Authorizer
	store *storage.Store
	audit *audit.Logger
}

func New(gate permissions.Authorizer, store *storage.Store, auditLogger *audit.Logger) *Module {
	return &Module{gate: gate, store: store, audit: auditLogger}
}

func (m *Module) SetCommandAssignments(ctx context.Context, caller permissions.Caller, guildID string, assignments map[string]string) (storage.CommandAssignments, error) {
	out, err := m.setCommandAssignments(ctx, caller, guildID, assignments)
	metrics.ConfigUpdates.WithLabelValues("commandAssignments", metrics.Outcome(err)).Inc()
	return out, err
}

func (m *Module) setCommandAssignments(ctx context.Context, caller permissions.Caller, guildID string, assignments map[string]string) (storage.CommandAssignments, error) {
	if err := m.authorize(ctx, caller, guildID); err != nil {
		return nil, err
	}

	out := make(storage.CommandAssignments, len(assignments))
	for name, target := range assignments {
		name = strings.ToLower(validate.SanitizeText(name))
		if name == "" {
			continue
		}
		out[name] = strings.TrimSpace(target)
	}
	if len(out) > MaxAssignments {
		return nil, apperr.Validation(apperr.CodeInvalidField, "assignments", "at most "+strconv.Itoa(MaxAssignments)+" command assignments are allowed")
	}

	if err := m.store.SaveCommandAssignments(ctx, guildID, out); err != nil {
		return nil, storage.Classify(err)
	}
	m.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "commands.update", "assignments="+strconv.Itoa(len(out)))
	return out, nil
}

// SetRestrictedChannels replaces the list. Duplicates are dropped, first
// occurrence wins.
func (m *Module) SetRestrictedChannels(ctx context.Context, caller permissions.Caller, guildID string, channels []string) (storage.RestrictedChannels, error) {
	out, err := m.setRestrictedChannels(ctx, caller, guildID, channels)
	metrics.ConfigUpdates.WithLabelValues("restrictedChannels", metrics.Outcome(err)).Inc()
	return out, err
}

func (m *Module) setRestrictedChannels(ctx context.Context, caller permissions.Caller, guildID string, channels []string) (storage.RestrictedChannels, error) {
	if err := m.authorize(ctx, caller, guildID); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(channels))
	out := make(storage.RestrictedChannels, 0, len(channels))
	for i, id := range channels {
		id = strings.TrimSpace(id)
		if !validate.Snowflake(id) {
			return nil, apperr.Validation(apperr.CodeInvalidSnowflake, "channels", "entry "+strconv.Itoa(i+1)+" is not a channel id")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) > MaxRestrictedChannels {
		return nil, apperr.Validation(apperr.CodeInvalidField, "channels", "too many restricted channels")
	}

	if err := m.store.SaveRestrictedChannels(ctx, guildID, out); err != nil {
		return nil, storage.Classify(err)
	}
	m.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "restricted.update", "channels="+strconv.Itoa(len(out)))
	return out, nil
}

func (m *Module) authorize(ctx context.Context, caller permissions.Caller, guildID string) error {
	if _, err := m.gate.Require(ctx, caller, guildID); err != nil {
		return err
	}
	if !validate.Snowflake(guildID) {
		return apperr.Validation(apperr.CodeInvalidSnowflake, "guildId", "guild id must be 17 to 19 digits")
	}
	return nil
}
