package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinFirst joins at most n items with sep, returning fallback when items is empty.
func JoinFirst(items []string, n int, sep, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	if len(items) > n {
		items = items[:n]
	}
	return strings.Join(items, sep)
}

// ContainsFold checks if a string slice contains item, ignoring case and surrounding space.
func ContainsFold(slice []string, item string) bool {
	key := Normalize(item)
	for _, s := range slice {
		if Normalize(s) == key {
			return true
		}
	}
	return false
}
