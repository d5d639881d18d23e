package utils

import "strings"

// Truncate returns the first n characters of s. Characters are runes, so a
// multi-byte sequence is never split.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
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

// WordCount counts whitespace-delimited, non-empty tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
