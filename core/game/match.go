package game

import (
	"strings"
	"unicode"

	"blindtest/model"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes characters and drops combining marks, so "é" compares
// equal to "e".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowers the input, strips diacritics, replaces anything outside
// [a-z0-9] with spaces and collapses runs of whitespace.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(deaccent, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsCorrect reports whether a free-text submission names the track. The
// normalized submission must contain the normalized title, the artist, or
// both in either order, which tolerates verbose answers like "it's X by Y".
func IsCorrect(submission string, track model.Track) bool {
	ans := Normalize(submission)
	if ans == "" {
		return false
	}

	title := Normalize(track.Title)
	artist := Normalize(track.Artist)

	if title != "" && strings.Contains(ans, title) {
		return true
	}
	if artist != "" && strings.Contains(ans, artist) {
		return true
	}
	if title != "" && artist != "" {
		if strings.Contains(ans, title+" "+artist) || strings.Contains(ans, artist+" "+title) {
			return true
		}
	}
	return false
}
