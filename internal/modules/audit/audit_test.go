package audit

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"guildhub/internal/documentstore"
	"guildhub/internal/storage"
)

func TestLogAppendsNewestFirst(t *testing.T) {
	store := storage.New(documentstore.NewMemory())
	logger := NewLogger(store, zap.NewNop(), 2)
	tick := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	logger.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	ctx := context.Background()
	logger.Log(ctx, LevelInfo, "g1", "u1", "embed.create", "first")
	logger.Log(ctx, LevelInfo, "g1", "u1", "embed.update", "second")
	logger.Log(ctx, LevelWarn, "g1", "u2", "embed.delete", "third")

	entries, err := logger.Entries(ctx, "g1")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected retention of 2, got %d", len(entries))
	}
	if entries[0].Event != "embed.delete" || entries[1].Event != "embed.update" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if !entries[0].CreatedAt.After(entries[1].CreatedAt) {
		t.Fatalf("expected newest first")
	}
}

func TestLogWithoutStore(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop(), 0)
	if logger.retention != DefaultRetention {
		t.Fatalf("expected default retention, got %d", logger.retention)
	}
	logger.Log(context.Background(), LevelInfo, "g1", "u1", "noop", "")
}
