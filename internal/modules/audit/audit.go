package audit

import (
	"context"
	"time"

	"guildhub/internal/storage"

	"go.uber.org/zap"
)

const (
	LevelInfo = "INFO"
	LevelWarn = "WARN"
	LevelCrit = "CRIT"
)

const DefaultRetention = 100

type Logger struct {
	store     *storage.Store
	logger    *zap.Logger
	retention int
	now       func() time.Time
}

func NewLogger(store *storage.Store, logger *zap.Logger, retention int) *Logger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Logger{store: store, logger: logger, retention: retention, now: time.Now}
}

// Log never fails the caller; a store error is only logged.
func (l *Logger) Log(ctx context.Context, level, guildID, userID, event, details string) {
	entry := storage.AuditEntry{
		GuildID:   guildID,
		UserID:    userID,
		Level:     level,
		Event:     event,
		Details:   details,
		CreatedAt: l.now().UTC(),
	}
	l.logger.Info("audit", zap.String("level", level), zap.String("guild_id", guildID), zap.String("user_id", userID), zap.String("event", event), zap.String("details", details))
	if l.store == nil {
		return
	}
	if err := l.store.AppendAudit(ctx, entry, l.retention); err != nil {
		l.logger.Warn("audit entry not stored", zap.String("guild_id", guildID), zap.String("event", event), zap.Error(err))
	}
}

func (l *Logger) Entries(ctx context.Context, guildID string) ([]storage.AuditEntry, error) {
	return l.store.AuditLog(ctx, guildID)
}
