package buttons

import (
	"strings"
	"testing"

	"guildhub/internal/apperr"
)

func TestParsePlainEntries(t *testing.T) {
	got, err := Parse("Visit,https://example.com|Docs,https://docs.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(got))
	}
	if got[0].Label != "Visit" || got[0].URL != "https://example.com" || got[0].Emoji != nil {
		t.Fatalf("unexpected first button: %+v", got[0])
	}
	if got[1].Label != "Docs" || got[1].URL != "https://docs.example.com" || got[1].Emoji != nil {
		t.Fatalf("unexpected second button: %+v", got[1])
	}
}

func TestParseEmojiEntries(t *testing.T) {
	got, err := Parse("<:wave:123456789> Say hi, https://example.com/hi | <a:party_parrot:987654321012345678> Party, https://example.com/party?x=1,2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(got))
	}
	first := got[0]
	if first.Emoji == nil || first.Emoji.Name != "wave" || first.Emoji.ID != "123456789" || first.Emoji.Animated {
		t.Fatalf("unexpected emoji: %+v", first.Emoji)
	}
	if first.Label != "Say hi" || first.URL != "https://example.com/hi" {
		t.Fatalf("unexpected button: %+v", first)
	}
	second := got[1]
	if second.Emoji == nil || !second.Emoji.Animated || second.Emoji.Name != "party_parrot" {
		t.Fatalf("unexpected emoji: %+v", second.Emoji)
	}
	if second.URL != "https://example.com/party?x=1,2" {
		t.Fatalf("expected url to keep later commas, got %q", second.URL)
	}
}

func TestParseEmptyAndBlankEntries(t *testing.T) {
	got, err := Parse("   ")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v %v", got, err)
	}
	got, err = Parse("A,https://a.example.com | | B,https://b.example.com |")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected blank entries to be skipped, got %d", len(got))
	}
}

func TestParseKeepsDuplicates(t *testing.T) {
	got, err := Parse("A,https://a.example.com|A,https://a.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected duplicates to be kept, got %d", len(got))
	}
}

func TestParseTooManyButtons(t *testing.T) {
	input := strings.TrimSuffix(strings.Repeat("B,https://example.com|", 6), "|")
	_, err := Parse(input)
	if apperr.CodeOf(err) != apperr.CodeTooManyButtons {
		t.Fatalf("expected TooManyButtons, got %v", err)
	}
	five := strings.TrimSuffix(strings.Repeat("B,https://example.com|", 5), "|")
	if _, err := Parse(five); err != nil {
		t.Fatalf("five buttons should pass: %v", err)
	}
}

func TestParseLabelTooLong(t *testing.T) {
	_, err := Parse(strings.Repeat("x", 81) + ",https://example.com")
	if apperr.CodeOf(err) != apperr.CodeLabelTooLong {
		t.Fatalf("expected LabelTooLong, got %v", err)
	}
	if _, err := Parse(strings.Repeat("x", 80) + ",https://example.com"); err != nil {
		t.Fatalf("80 characters should pass: %v", err)
	}
}

func TestParseInvalidURL(t *testing.T) {
	_, err := Parse("Label,not-a-url")
	if apperr.CodeOf(err) != apperr.CodeInvalidButtonURL {
		t.Fatalf("expected InvalidButtonUrl, got %v", err)
	}
	_, err = Parse("<:wave:1> Hi, http://example.com")
	if apperr.CodeOf(err) != apperr.CodeInvalidButtonURL {
		t.Fatalf("expected emoji entries to require https, got %v", err)
	}
}

func TestParseInvalidFormat(t *testing.T) {
	for _, input := range []string{"just a label", ",https://example.com", "Label,", "<:wave:1> no comma"} {
		_, err := Parse(input)
		if apperr.CodeOf(err) != apperr.CodeInvalidButtonFormat {
			t.Fatalf("Parse(%q): expected InvalidButtonFormat, got %v", input, err)
		}
	}
}

func TestParseFailureAbortsWholeSpec(t *testing.T) {
	got, err := Parse("Good,https://example.com|Bad,nope")
	if err == nil || got != nil {
		t.Fatalf("expected no partial result, got %v", got)
	}
	if !strings.Contains(err.Error(), "button 2") {
		t.Fatalf("expected reason to name the entry, got %q", err.Error())
	}
}

func TestMalformedEmojiIsLabelText(t *testing.T) {
	got, err := Parse("<:wave:abc> Hi, https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Emoji != nil || got[0].Label != "<:wave:abc> Hi" {
		t.Fatalf("unexpected button: %+v", got[0])
	}
}
