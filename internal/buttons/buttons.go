// Package buttons parses the link button grammar used by custom embeds:
//
//	input := entry ( "|" entry )*
//	entry := emoji label "," url | label "," url
//	emoji := "<" [ "a" ] ":" name ":" id ">"
package buttons

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"guildhub/internal/apperr"
	"guildhub/internal/validate"
)

const (
	MaxButtons     = 5
	MaxLabelLength = 80
)

type Emoji struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Animated bool   `json:"animated"`
}

type Descriptor struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Emoji *Emoji `json:"emoji,omitempty"`
}

type entry struct {
	src    string
	tokens []token
	start  int
	end    int
}

// Parse reads a button list. Any bad entry fails the whole list.
func Parse(input string) ([]Descriptor, error) {
	entries := splitEntries(input, lex(input))
	if len(entries) > MaxButtons {
		return nil, apperr.Validation(apperr.CodeTooManyButtons, "buttons", fmt.Sprintf("at most %d buttons are allowed, got %d", MaxButtons, len(entries)))
	}

	out := make([]Descriptor, 0, len(entries))
	for i, e := range entries {
		desc, err := e.parse(i + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

func splitEntries(src string, tokens []token) []entry {
	var entries []entry
	start := 0
	var current []token
	closeEntry := func(end int) {
		if strings.TrimSpace(src[start:end]) != "" {
			entries = append(entries, entry{src: src, tokens: current, start: start, end: end})
		}
		current = nil
	}
	for _, tok := range tokens {
		if tok.kind == tokPipe {
			closeEntry(tok.start)
			start = tok.end
			continue
		}
		current = append(current, tok)
	}
	closeEntry(len(src))
	return entries
}

func (e entry) text(t token) string {
	return e.src[t.start:t.end]
}

func (e entry) parse(position int) (Descriptor, error) {
	if emoji, rest, ok := e.emojiPrefix(); ok {
		return e.parseEmojiEntry(position, emoji, rest)
	}
	return e.parsePlainEntry(position)
}

// emojiPrefix matches the emoji production at the start of the entry and
// returns the index of the first token after it.
func (e entry) emojiPrefix() (*Emoji, int, bool) {
	toks := e.tokens
	i := 0
	if i < len(toks) && toks[i].kind == tokText && strings.TrimSpace(e.text(toks[i])) == "" {
		i++
	}
	if i >= len(toks) || toks[i].kind != tokOpen {
		return nil, 0, false
	}
	i++

	emoji := &Emoji{}
	if i < len(toks) && toks[i].kind == tokText {
		if e.text(toks[i]) != "a" {
			return nil, 0, false
		}
		emoji.Animated = true
		i++
	}
	if i >= len(toks) || toks[i].kind != tokColon {
		return nil, 0, false
	}
	i++
	if i >= len(toks) || toks[i].kind != tokText || !isIdentifier(e.text(toks[i])) {
		return nil, 0, false
	}
	emoji.Name = e.text(toks[i])
	i++
	if i >= len(toks) || toks[i].kind != tokColon {
		return nil, 0, false
	}
	i++
	if i >= len(toks) || toks[i].kind != tokText || !isDigits(e.text(toks[i])) {
		return nil, 0, false
	}
	emoji.ID = e.text(toks[i])
	i++
	if i >= len(toks) || toks[i].kind != tokClose {
		return nil, 0, false
	}
	return emoji, i + 1, true
}

func (e entry) parseEmojiEntry(position int, emoji *Emoji, rest int) (Descriptor, error) {
	from := e.end
	if rest < len(e.tokens) {
		from = e.tokens[rest].start
	}
	label, url, ok := e.splitLabel(from, rest)
	if !ok || url == "" {
		return Descriptor{}, formatError(position, "expected \"<:name:id> Label, https://url\"")
	}
	if err := checkLabel(position, label); err != nil {
		return Descriptor{}, err
	}
	if !validate.HTTPS(url) {
		return Descriptor{}, urlError(position, url)
	}
	return Descriptor{Label: label, URL: url, Emoji: emoji}, nil
}

func (e entry) parsePlainEntry(position int) (Descriptor, error) {
	label, url, ok := e.splitLabel(e.start, 0)
	if !ok || label == "" || url == "" {
		return Descriptor{}, formatError(position, "expected \"Label, URL\"")
	}
	if err := checkLabel(position, label); err != nil {
		return Descriptor{}, err
	}
	if !validate.URL(url) {
		return Descriptor{}, urlError(position, url)
	}
	return Descriptor{Label: label, URL: url}, nil
}

// splitLabel cuts the entry at its first comma at or after token index
// from, returning the trimmed label and URL.
func (e entry) splitLabel(labelStart, from int) (string, string, bool) {
	for _, tok := range e.tokens[from:] {
		if tok.kind != tokComma {
			continue
		}
		label := strings.TrimSpace(e.src[labelStart:tok.start])
		url := strings.TrimSpace(e.src[tok.end:e.end])
		return label, url, true
	}
	return "", "", false
}

func checkLabel(position int, label string) error {
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return apperr.Validation(apperr.CodeLabelTooLong, "buttons", fmt.Sprintf("button %d: label exceeds %d characters", position, MaxLabelLength))
	}
	return nil
}

func formatError(position int, expected string) error {
	return apperr.Validation(apperr.CodeInvalidButtonFormat, "buttons", fmt.Sprintf("button %d: %s", position, expected))
}

func urlError(position int, url string) error {
	return apperr.Validation(apperr.CodeInvalidButtonURL, "buttons", fmt.Sprintf("button %d: invalid url %q", position, url))
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
