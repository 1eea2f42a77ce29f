package autorole

import (
	"context"
	"strings"

	"guildhub/internal/apperr"
	"guildhub/internal/metrics"
	"guildhub/internal/modules/audit"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
	"guildhub/internal/validate"
)

type Roles interface {
	HasRole(ctx context.Context, guildID, roleID string) (bool, error)
}

type Module struct {
	gate  permissions.Authorizer
	store *storage.Store
	roles Roles
	audit *audit.Logger
}

func New(gate permissions.Authorizer, store *storage.Store, roles Roles, auditLogger *audit.Logger) *Module {
	return &Module{gate: gate, store: store, roles: roles, audit: auditLogger}
}

// Update sets the role given to new members. An empty roleID clears it.
func (m *Module) Update(ctx context.Context, caller permissions.Caller, guildID, roleID string) (storage.AutoroleConfig, error) {
	cfg, err := m.update(ctx, caller, guildID, strings.TrimSpace(roleID))
	metrics.ConfigUpdates.WithLabelValues("autorole", metrics.Outcome(err)).Inc()
	return cfg, err
}

func (m *Module) update(ctx context.Context, caller permissions.Caller, guildID, roleID string) (storage.AutoroleConfig, error) {
	if _, err := m.gate.Require(ctx, caller, guildID); err != nil {
		return storage.AutoroleConfig{}, err
	}
	if !validate.Snowflake(guildID) {
		return storage.AutoroleConfig{}, apperr.Validation(apperr.CodeInvalidSnowflake, "guildId", "guild id must be 17 to 19 digits")
	}
	if roleID != "" {
		if !validate.Snowflake(roleID) {
			return storage.AutoroleConfig{}, apperr.Validation(apperr.CodeInvalidSnowflake, "roleId", "role id must be 17 to 19 digits")
		}
		ok, err := m.roles.HasRole(ctx, guildID, roleID)
		if err != nil {
			return storage.AutoroleConfig{}, apperr.Upstream(apperr.CodeDirectoryFailed, "could not list guild roles", err)
		}
		if !ok {
			return storage.AutoroleConfig{}, apperr.Validation(apperr.CodeInvalidField, "roleId", "role does not exist in this guild")
		}
	}

	cfg := storage.AutoroleConfig{RoleID: roleID}
	if err := m.store.SaveAutorole(ctx, guildID, cfg); err != nil {
		return storage.AutoroleConfig{}, storage.Classify(err)
	}
	detail := "role=" + roleID
	if roleID == "" {
		detail = "cleared"
	}
	m.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "autorole.update", detail)
	return cfg, nil
}
