package colors

import (
	"strconv"
	"strings"
)

const Default = 0x0099ff

var named = map[string]int{
	"red":     0xff0000,
	"green":   0x00ff00,
	"blue":    0x0000ff,
	"yellow":  0xffff00,
	"orange":  0xffa500,
	"purple":  0x800080,
	"pink":    0xffc0cb,
	"cyan":    0x00ffff,
	"magenta": 0xff00ff,
	"lime":    0x32cd32,
	"black":   0x000000,
	"white":   0xffffff,
	"gray":    0x808080,
	"grey":    0x808080,
	"silver":  0xc0c0c0,
	"gold":    0xffd700,
	"navy":    0x000080,
	"teal":    0x008080,
	"maroon":  0x800000,
	"olive":   0x808000,
}

// Resolve turns a color token into a 24-bit value. Anything it does not
// understand resolves to Default.
func Resolve(raw string) int {
	token := strings.TrimSpace(raw)
	switch {
	case token == "":
		return Default
	case strings.HasPrefix(token, "#"):
		return parseHex(token[1:])
	case strings.HasPrefix(token, "0x"):
		return parseHex(token[2:])
	}
	if value, ok := named[strings.ToLower(token)]; ok {
		return value
	}
	return Default
}

func parseHex(digits string) int {
	if digits == "" {
		return Default
	}
	value, err := strconv.ParseUint(digits, 16, 24)
	if err != nil {
		return Default
	}
	return int(value)
}

// Names lists the accepted color names.
func Names() []string {
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	return names
}
