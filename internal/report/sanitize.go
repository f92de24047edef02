package report

import "strings"

// markdownSpecials are escaped in every user supplied value of an issue body.
const markdownSpecials = "\\`*_{}[]()#+-.!~"

// EscapeMarkdown prefixes each Markdown metacharacter of s with a backslash.
func EscapeMarkdown(s string) string {
	if !strings.ContainsAny(s, markdownSpecials) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		if strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
