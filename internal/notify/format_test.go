package notify

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestEnsureLengthUnchanged(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "short", strings.Repeat("a", MessageLimit)} {
		if got := EnsureLength(s); got != s {
			t.Fatalf("EnsureLength(%d chars) altered text at or under the limit", len(s))
		}
	}
}

func TestEnsureLengthTruncatesAtLineBoundary(t *testing.T) {
	t.Parallel()
	line := strings.Repeat("x", 99) + "\n"
	long := strings.Repeat(line, 60) // 6000 chars

	got := EnsureLength(long)
	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatalf("truncated text must end with the marker, got %q", got[len(got)-60:])
	}
	if n := utf8.RuneCountInString(got); n > MessageLimit {
		t.Fatalf("truncated length %d exceeds limit %d", n, MessageLimit)
	}
	body := strings.TrimSuffix(got, truncationMarker)
	if utf8.RuneCountInString(body) >= MessageLimit-cutHeadroom {
		t.Fatalf("cut did not back up to a line boundary, body length = %d", utf8.RuneCountInString(body))
	}
	if !strings.HasPrefix(long, body+"\n") {
		t.Fatal("body must end exactly at a line boundary of the input")
	}
}

func TestEnsureLengthHardCutWithoutBoundary(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("y", MessageLimit+500) // no newline anywhere

	got := EnsureLength(long)
	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatal("truncated text must end with the marker")
	}
	body := strings.TrimSuffix(got, truncationMarker)
	if utf8.RuneCountInString(body) != MessageLimit-cutHeadroom {
		t.Fatalf("hard cut length = %d, want %d", utf8.RuneCountInString(body), MessageLimit-cutHeadroom)
	}
}

func TestEnsureLengthLeadingNewlineOnly(t *testing.T) {
	t.Parallel()
	// The only newline sits at index 0; the boundary search requires a
	// positive index, so this must fall back to a hard cut.
	long := "\n" + strings.Repeat("z", MessageLimit+500)

	got := EnsureLength(long)
	body := strings.TrimSuffix(got, truncationMarker)
	if utf8.RuneCountInString(body) != MessageLimit-cutHeadroom {
		t.Fatalf("expected hard cut, body length = %d", utf8.RuneCountInString(body))
	}
}

func TestEnsureLengthMultibyte(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("č", MessageLimit+100)

	got := EnsureLength(long)
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multibyte rune")
	}
	if n := utf8.RuneCountInString(got); n > MessageLimit {
		t.Fatalf("length %d exceeds limit", n)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{in: "a_b", want: `a\_b`},
		{in: "a*b", want: `a\*b`},
		{in: "a`b", want: "a\\`b"},
		{in: "a[b", want: `a\[b`},
		{in: "_*`[", want: "\\_\\*\\`\\["},
		{in: "plain text, even with ] and (parens)", want: "plain text, even with ] and (parens)"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := EscapeMarkdown(tt.in); got != tt.want {
			t.Fatalf("EscapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHeader(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	h := Header(at)
	if !strings.HasPrefix(h, "📚 Denní téma — ") {
		t.Fatalf("unexpected header prefix: %q", h)
	}
	if !strings.Contains(h, "2025-03-01 13:00") {
		t.Fatalf("header must render the time in UTC+1: %q", h)
	}
	if !strings.HasSuffix(h, "\n\n") {
		t.Fatal("header must end with a blank line")
	}
}
