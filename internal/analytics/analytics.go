package analytics

import (
	"context"
	"time"

	"guildhub/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Total   int            `json:"total"`
	ByLevel map[string]int `json:"byLevel"`
	ByEvent map[string]int `json:"byEvent"`
	Since   time.Time      `json:"since"`
}

// Report summarizes the retained audit entries created at or after since.
func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	entries, err := s.store.AuditLog(ctx, guildID)
	if err != nil {
		return Report{}, err
	}

	report := Report{ByLevel: make(map[string]int), ByEvent: make(map[string]int), Since: since}
	for _, entry := range entries {
		if entry.CreatedAt.Before(since) {
			continue
		}
		report.Total++
		report.ByLevel[entry.Level]++
		report.ByEvent[entry.Event]++
	}
	return report, nil
}
