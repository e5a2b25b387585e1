package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase upper-cases the first letter of each word and lower-cases the
// rest, so "half-orc" becomes "Half-Orc".
func TitleCase(s string) string {
	// Casers hold state and cannot be shared between goroutines.
	return cases.Title(language.English).String(s)
}

// Hash computes a SHA-256 hex hash of a string for deduplication.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// Width is the display length used for column alignment.
func Width(s string) int {
	return utf8.RuneCountInString(s)
}
