package analytics

import (
	"context"
	"testing"
	"time"

	"guildhub/internal/documentstore"
	"guildhub/internal/storage"
)

func TestReport(t *testing.T) {
	store := storage.New(documentstore.NewMemory())
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	entries := []storage.AuditEntry{
		{GuildID: "g1", Level: "INFO", Event: "embed.create", CreatedAt: base.Add(-time.Hour)},
		{GuildID: "g1", Level: "INFO", Event: "embed.create", CreatedAt: base.Add(time.Hour)},
		{GuildID: "g1", Level: "WARN", Event: "embed.persist_failed", CreatedAt: base.Add(2 * time.Hour)},
		{GuildID: "g1", Level: "INFO", Event: "welcome.update", CreatedAt: base.Add(3 * time.Hour)},
	}
	for _, entry := range entries {
		if err := store.AppendAudit(ctx, entry, 100); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	report, err := New(store).Report(ctx, "g1", base)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("expected 3 entries since base, got %d", report.Total)
	}
	if report.ByLevel["INFO"] != 2 || report.ByLevel["WARN"] != 1 {
		t.Fatalf("unexpected by level: %v", report.ByLevel)
	}
	if report.ByEvent["embed.create"] != 1 || report.ByEvent["welcome.update"] != 1 {
		t.Fatalf("unexpected by event: %v", report.ByEvent)
	}
}
