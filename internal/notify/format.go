package notify

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MessageLimit is the transport cap applied before sending. Telegram's hard
// limit is 4096; headroom is left for the header and the marker.
const MessageLimit = 4000

// truncationMarker is appended whenever a message had to be shortened.
const truncationMarker = "\n\n*(zkráceno — otevři úplnou historii v DB)*"

// cutHeadroom keeps the marker and a partial trailing line well inside the
// limit: over-long text is cut at MessageLimit-cutHeadroom first.
const cutHeadroom = 200

var headerZone = time.FixedZone("UTC+1", 60*60)

// Header renders the message header with the send time in UTC+1.
func Header(now time.Time) string {
	return "📚 Denní téma — " + now.In(headerZone).Format("2006-01-02 15:04 MST") + "\n\n"
}

// EnsureLength shortens text to fit MessageLimit.
//
// Over-long input is cut at MessageLimit-cutHeadroom runes, then backed up
// to the last line boundary when one exists at a positive index in the cut
// window (hard cut otherwise), and the truncation marker is appended.
// Text at or under the limit is returned unchanged.
func EnsureLength(text string) string {
	return ensureLength(text, MessageLimit)
}

func ensureLength(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	cut := truncRunes(text, limit-cutHeadroom)
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	return cut + truncationMarker
}

// truncRunes returns s truncated to at most n runes.
func truncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

// EscapeMarkdown prefixes the four metacharacters `_`, `*`, backtick and
// `[` with a backslash. The set is intentionally partial; it covers the
// characters that break Telegram's legacy Markdown mode in practice and is
// a known limitation, not an exhaustive escape.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
