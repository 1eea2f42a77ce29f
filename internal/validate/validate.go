package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const MaxTextLength = 2000

var snowflakeRegex = regexp.MustCompile(`^[0-9]{17,19}$`)

const unsafeChars = `<>'"&`

// Snowflake reports whether id looks like a platform identifier.
func Snowflake(id string) bool {
	return snowflakeRegex.MatchString(id)
}

func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := strings.TrimSpace(stripUnsafe(text))
	return truncate(cleaned, MaxTextLength)
}

// stripUnsafe drops unsafe characters. A space that would sit next to one
// already written across a dropped character is dropped too; other spacing
// is left alone.
func stripUnsafe(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var last rune
	stripped := false
	for _, r := range text {
		switch {
		case strings.ContainsRune(unsafeChars, r):
			stripped = true
			continue
		case r == ' ' && stripped && last == ' ':
			continue
		case r != ' ':
			stripped = false
		}
		b.WriteRune(r)
		last = r
	}
	return b.String()
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
