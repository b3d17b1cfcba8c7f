package framework

import (
	"strings"
	"unicode"
)

// RuneFilter determines which runes are allowed in input.
type RuneFilter func(r rune) bool

// RuneFilterNone allows all printable characters.
func RuneFilterNone(r rune) bool {
	return unicode.IsPrint(r)
}

// RuneFilterNoSpaces allows printable characters except spaces.
// Use for branch names.
func RuneFilterNoSpaces(r rune) bool {
	return unicode.IsPrint(r) && !unicode.IsSpace(r)
}

// FilterRunes returns the characters of text that pass the filter.
// A nil filter allows all printable characters.
func FilterRunes(text string, filter RuneFilter) string {
	if filter == nil {
		filter = RuneFilterNone
	}
	var result strings.Builder
	for _, r := range text {
		if filter(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// DeleteLastWord removes the last word and any spaces after it.
func DeleteLastWord(s string) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return ""
	}
	return s[:i+1]
}
