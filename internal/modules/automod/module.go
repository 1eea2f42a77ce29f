package automod

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"guildhub/internal/apperr"
	"guildhub/internal/metrics"
	"guildhub/internal/modules/audit"
	"guildhub/internal/permissions"
	"guildhub/internal/storage"
	"guildhub/internal/validate"
)

const (
	MaxWords      = 200
	MaxWordLength = 64
)

type Patch struct {
	LinkFilter    *bool     `json:"linkFilter"`
	BadWordFilter *bool     `json:"badWordFilter"`
	BadWords      *[]string `json:"badWords"`
}

type Module struct {
	gate  permissions.Authorizer
	store *storage.Store
	audit *audit.Logger
}

func New(gate permissions.Authorizer, store *storage.Store, auditLogger *audit.Logger) *Module {
	return &Module{gate: gate, store: store, audit: auditLogger}
}

func (m *Module) Update(ctx context.Context, caller permissions.Caller, guildID string, patch Patch) (storage.AutomodConfig, error) {
	cfg, err := m.update(ctx, caller, guildID, patch)
	metrics.ConfigUpdates.WithLabelValues("automod", metrics.Outcome(err)).Inc()
	return cfg, err
}

func (m *Module) update(ctx context.Context, caller permissions.Caller, guildID string, patch Patch) (storage.AutomodConfig, error) {
	if _, err := m.gate.Require(ctx, caller, guildID); err != nil {
		return storage.AutomodConfig{}, err
	}
	if !validate.Snowflake(guildID) {
		return storage.AutomodConfig{}, apperr.Validation(apperr.CodeInvalidSnowflake, "guildId", "guild id must be 17 to 19 digits")
	}

	var words []string
	if patch.BadWords != nil {
		normalized, err := NormalizeWords(*patch.BadWords)
		if err != nil {
			return storage.AutomodConfig{}, err
		}
		words = normalized
	}

	cfg, err := m.store.Automod(ctx, guildID)
	if err != nil {
		return storage.AutomodConfig{}, storage.Classify(err)
	}
	if patch.LinkFilter != nil {
		cfg.LinkFilter = *patch.LinkFilter
	}
	if patch.BadWordFilter != nil {
		cfg.BadWordFilter = *patch.BadWordFilter
	}
	if patch.BadWords != nil {
		cfg.BadWords = words
	}

	if err := m.store.SaveAutomod(ctx, guildID, cfg); err != nil {
		return storage.AutomodConfig{}, storage.Classify(err)
	}
	m.audit.Log(ctx, audit.LevelInfo, guildID, caller.UserID, "automod.update",
		"links="+strconv.FormatBool(cfg.LinkFilter)+" badwords="+strconv.FormatBool(cfg.BadWordFilter)+" words="+strconv.Itoa(len(cfg.BadWords)))
	return cfg, nil
}

// NormalizeWords folds each word to lower case without accents and returns
// the distinct words sorted.
func NormalizeWords(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, word := range raw {
		word = normalizeText(strings.TrimSpace(word))
		word = validate.SanitizeText(word)
		if word == "" || seen[word] {
			continue
		}
		if utf8.RuneCountInString(word) > MaxWordLength {
			return nil, apperr.Validation(apperr.CodeInvalidField, "badWords", "words are limited to "+strconv.Itoa(MaxWordLength)+" characters")
		}
		seen[word] = true
		out = append(out, word)
	}
	if len(out) > MaxWords {
		return nil, apperr.Validation(apperr.CodeInvalidField, "badWords", "at most "+strconv.Itoa(MaxWords)+" words are allowed")
	}
	sort.Strings(out)
	return out, nil
}

var accentFolder = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i",
	"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ç", "c", "ñ", "n",
)

func normalizeText(input string) string {
	return accentFolder.Replace(strings.ToLower(input))
}
