// Package storage maps per-guild configuration onto documents in a
// documentstore.Store. Getters return defaults when nothing is stored and
// report store failures as *Error.
package storage

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"

	"guildhub/internal/apperr"
	"guildhub/internal/documentstore"
)

var ErrUnavailable = errors.New("settings store unavailable")

type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	return "storage " + e.Op + " " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// Classify turns a store failure into the shared upstream error. Other
// errors pass through.
func Classify(err error) error {
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return apperr.Upstream(apperr.CodeStoreUnavailable, "settings store unavailable", storeErr)
	}
	return err
}

type Store struct {
	docs documentstore.Store
}

func New(docs documentstore.Store) *Store {
	return &Store{docs: docs}
}

func (s *Store) Close() error {
	return s.docs.Close()
}

func get[T any](ctx context.Context, s *Store, key Key, value T) (T, error) {
	raw, err := s.docs.Get(ctx, key.Path())
	if errors.Is(err, documentstore.ErrNotFound) {
		return value, nil
	}
	if err != nil {
		return value, &Error{Op: "get", Key: key.Path(), Err: err}
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return value, &Error{Op: "decode", Key: key.Path(), Err: err}
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, key Key, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &Error{Op: "encode", Key: key.Path(), Err: err}
	}
	if err := s.docs.Set(ctx, key.Path(), raw); err != nil {
		return &Error{Op: "set", Key: key.Path(), Err: err}
	}
	return nil
}

func (s *Store) remove(ctx context.Context, key Key) error {
	if err := s.docs.Remove(ctx, key.Path()); err != nil {
		return &Error{Op: "remove", Key: key.Path(), Err: err}
	}
	return nil
}

func (s *Store) Settings(ctx context.Context, guildID string) (SettingsDoc, error) {
	doc, err := get(ctx, s, Key{GuildID: guildID, Section: SectionSettings}, DefaultSettingsDoc())
	if doc.Welcome.Messages == nil {
		doc.Welcome.Messages = []string{}
	}
	if doc.Leave.Messages == nil {
		doc.Leave.Messages = []string{}
	}
	return doc, err
}

func (s *Store) SaveSettings(ctx context.Context, guildID string, doc SettingsDoc) error {
	return s.set(ctx, Key{GuildID: guildID, Section: SectionSettings}, doc)
}

func (s *Store) Automod(ctx context.Context, guildID string) (AutomodConfig, error) {
	cfg, err := get(ctx, s, Key{GuildID: guildID, Section: SectionAutomod}, DefaultAutomod())
	if cfg.BadWords == nil {
		cfg.BadWords = []string{}
	}
	return cfg, err
}

func (s *Store) SaveAutomod(ctx context.Context, guildID string, cfg AutomodConfig) error {
	return s.set(ctx, Key{GuildID: guildID, Section: SectionAutomod}, cfg)
}

func (s *Store) Autorole(ctx context.Context, guildID string) (AutoroleConfig, error) {
	return get(ctx, s, Key{GuildID: guildID, Section: SectionAutorole}, AutoroleConfig{})
}

func (s *Store) SaveAutorole(ctx context.Context, guildID string, cfg AutoroleConfig) error {
	return s.set(ctx, Key{GuildID: guildID, Section: SectionAutorole}, cfg)
}

func (s *Store) CommandAssignments(ctx context.Context, guildID string) (CommandAssignments, error) {
	assignments, err := get(ctx, s, Key{GuildID: guildID, Section: SectionCommandAssignments}, CommandAssignments{})
	if assignments == nil {
		assignments = CommandAssignments{}
	}
	return assignments, err
}

func (s *Store) SaveCommandAssignments(ctx context.Context, guildID string, assignments CommandAssignments) error {
	return s.set(ctx, Key{GuildID: guildID, Section: SectionCommandAssignments}, assignments)
}

func (s *Store) RestrictedChannels(ctx context.Context, guildID string) (RestrictedChannels, error) {
	channels, err := get(ctx, s, Key{GuildID: guildID, Section: SectionRestrictedChannels}, RestrictedChannels{})
	if channels == nil {
		channels = RestrictedChannels{}
	}
	return channels, err
}

func (s *Store) SaveRestrictedChannels(ctx context.Context, guildID string, channels RestrictedChannels) error {
	return s.set(ctx, Key{GuildID: guildID, Section: SectionRestrictedChannels}, channels)
}

// GuildSettings reads every section of a guild. The first store failure
// aborts the read.
func (s *Store) GuildSettings(ctx context.Context, guildID string) (GuildSettings, error) {
	out := GuildSettings{GuildID: guildID}

	doc, err := s.Settings(ctx, guildID)
	if err != nil {
		return out, err
	}
	out.Welcome, out.Leave = doc.Welcome, doc.Leave

	if out.Automod, err = s.Automod(ctx, guildID); err != nil {
		return out, err
	}
	if out.Autorole, err = s.Autorole(ctx, guildID); err != nil {
		return out, err
	}
	if out.CommandAssignments, err = s.CommandAssignments(ctx, guildID); err != nil {
		return out, err
	}
	if out.RestrictedChannels, err = s.RestrictedChannels(ctx, guildID); err != nil {
		return out, err
	}
	return out, nil
}

// Embed reports found=false when no record exists for embedID.
func (s *Store) Embed(ctx context.Context, guildID, embedID string) (EmbedRecord, bool, error) {
	key := embedKey(guildID, embedID)
	raw, err := s.docs.Get(ctx, key.Path())
	if errors.Is(err, documentstore.ErrNotFound) {
		return EmbedRecord{}, false, nil
	}
	if err != nil {
		return EmbedRecord{}, false, &Error{Op: "get", Key: key.Path(), Err: err}
	}
	var rec EmbedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return EmbedRecord{}, false, &Error{Op: "decode", Key: key.Path(), Err: err}
	}
	return rec, true, nil
}

func (s *Store) SaveEmbed(ctx context.Context, rec EmbedRecord) error {
	if rec.GuildID == "" || rec.ID == "" {
		return errors.New("embed record needs a guild id and an id")
	}
	return s.set(ctx, embedKey(rec.GuildID, rec.ID), rec)
}

func (s *Store) RemoveEmbed(ctx context.Context, guildID, embedID string) error {
	return s.remove(ctx, embedKey(guildID, embedID))
}

// Embeds lists a guild's embed records oldest first.
func (s *Store) Embeds(ctx context.Context, guildID string) ([]EmbedRecord, error) {
	prefix := Key{GuildID: guildID, Section: SectionEmbeds}.Path() + "/"
	docs, err := s.docs.List(ctx, prefix)
	if err != nil {
		return nil, &Error{Op: "list", Key: prefix, Err: err}
	}

	records := make([]EmbedRecord, 0, len(docs))
	for path, raw := range docs {
		var rec EmbedRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, &Error{Op: "decode", Key: path, Err: err}
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// AuditLog returns the retained entries newest first.
func (s *Store) AuditLog(ctx context.Context, guildID string) ([]AuditEntry, error) {
	entries, err := get(ctx, s, Key{GuildID: guildID, Section: SectionAuditLog}, []AuditEntry{})
	if entries == nil {
		entries = []AuditEntry{}
	}
	return entries, err
}

// AppendAudit prepends entry and keeps at most retention entries.
func (s *Store) AppendAudit(ctx context.Context, entry AuditEntry, retention int) error {
	entries, err := s.AuditLog(ctx, entry.GuildID)
	if err != nil {
		return err
	}
	entries = append([]AuditEntry{entry}, entries...)
	if retention > 0 && len(entries) > retention {
		entries = entries[:retention]
	}
	return s.set(ctx, Key{GuildID: entry.GuildID, Section: SectionAuditLog}, entries)
}

// PurgeGuild removes every document stored for a guild and returns the
// keys it removed, sorted by path. A path that does not parse as a key
// stops the purge before anything is removed.
func (s *Store) PurgeGuild(ctx context.Context, guildID string) ([]Key, error) {
	prefix := guildPrefix(guildID)
	docs, err := s.docs.List(ctx, prefix)
	if err != nil {
		return nil, &Error{Op: "list", Key: prefix, Err: err}
	}
	keys := make([]Key, 0, len(docs))
	for path := range docs {
		key, err := ParseKey(path)
		if err != nil {
			return nil, &Error{Op: "purge", Key: path, Err: err}
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Path() < keys[j].Path() })

	removed := make([]Key, 0, len(keys))
	for _, key := range keys {
		if err := s.remove(ctx, key); err != nil {
			return removed, err
		}
		removed = append(removed, key)
	}
	return removed, nil
}
