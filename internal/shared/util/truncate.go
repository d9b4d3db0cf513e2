package util

import "unicode/utf8"

// TruncateUTF8 cuts s to at most max bytes without splitting a multi-byte
// rune, backing up to the nearest rune boundary when the cut lands mid-rune.
func TruncateUTF8(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
