// Package textutil prepares upstream text (titles, descriptions, tags) for
// single-line, width-limited terminal cells.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

// ansiRE matches CSI and OSC escape sequences.
var ansiRE = regexp.MustCompile(`\x1b(?:\[[0-9;?]*[A-Za-z]|\].*?(?:\x1b\\|\x07))`)

// Clean makes s safe for a single terminal line: escape sequences are
// removed, invalid UTF-8 becomes U+FFFD, and every run of whitespace or
// control characters collapses to one space.
func Clean(s string) string {
	s = ansiRE.ReplaceAllString(validUTF8(s), "")
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// Width returns the display width of s.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to maxWidth display columns, ending with an ellipsis when
// anything was dropped.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, ellipsis)
}

// PadRight truncates or pads s to exactly width columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// PadLeft truncates or left-pads s to exactly width columns.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(Truncate(s, width), width)
}

// MiddleTruncate truncates s in the middle with an ellipsis if its display
// width exceeds maxWidth. File paths keep both their directory and name
// visible this way. Below 3 columns it falls back to a hard right cut.
func MiddleTruncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return truncatePrefix(s, maxWidth)
	}

	remaining := maxWidth - 1
	head := truncatePrefix(s, (remaining+1)/2)
	tail := truncateSuffix(s, remaining/2)
	return head + ellipsis + tail
}

// truncatePrefix returns the longest prefix of s no wider than maxWidth.
func truncatePrefix(s string, maxWidth int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > maxWidth {
			return s[:i]
		}
		w += rw
	}
	return s
}

// truncateSuffix returns the longest suffix of s no wider than maxWidth.
func truncateSuffix(s string, maxWidth int) string {
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}
