package utils

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// Slug lowercases s and replaces every non [a-z0-9] rune with a hyphen.
func Slug(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "-")
}

// Compact lowercases s and drops every non [a-z0-9] rune.
func Compact(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(s), "")
}

// Prefix returns at most n leading runes of s.
func Prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}
