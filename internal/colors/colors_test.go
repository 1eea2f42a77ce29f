package colors

import (
	"sort"
	"testing"
)

func TestResolveEquivalentForms(t *testing.T) {
	for _, token := range []string{"#ff0000", "0xff0000", "red", "RED", " Red "} {
		if got := Resolve(token); got != 0xff0000 {
			t.Fatalf("Resolve(%q) = %#x, want 0xff0000", token, got)
		}
	}
}

func TestResolveFallsBack(t *testing.T) {
	for _, token := range []string{"", "not-a-color", "#", "#zzzzzz", "0x", "0xnothex", "#1000000", "ff0000"} {
		if got := Resolve(token); got != Default {
			t.Fatalf("Resolve(%q) = %#x, want default", token, got)
		}
	}
}

func TestResolveShortHex(t *testing.T) {
	if got := Resolve("#fff"); got != 0xfff {
		t.Fatalf("unexpected value %#x", got)
	}
	if got := Resolve("#000000"); got != 0 {
		t.Fatalf("unexpected value %#x", got)
	}
}

func TestNamedTable(t *testing.T) {
	names := Names()
	sort.Strings(names)
	if len(names) != 20 {
		t.Fatalf("expected 20 names, got %d", len(names))
	}
	if Resolve("grey") != Resolve("gray") {
		t.Fatalf("expected grey and gray to match")
	}
}
