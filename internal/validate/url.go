package validate

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// URL reports whether raw is an absolute http or https URL with a usable host.
func URL(raw string) bool {
	_, ok := ParseURL(raw)
	return ok
}

// ParseURL is URL that also returns the parsed value with an ASCII host.
func ParseURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, false
	}
	asciiHost, err := idna.Lookup.ToASCII(strings.ToLower(host))
	if err != nil || asciiHost == "" {
		return nil, false
	}
	return parsed, true
}

// HTTPS reports whether raw is a valid URL using the https scheme.
func HTTPS(raw string) bool {
	parsed, ok := ParseURL(raw)
	return ok && strings.EqualFold(parsed.Scheme, "https")
}
