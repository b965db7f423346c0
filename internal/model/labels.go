package model

import (
	"regexp"
	"strings"
)

var splitWordsPattern = regexp.MustCompile(`[_\-\s]+`)

// DefaultLabeler turns an identifier such as a field kind ("short") or an
// option key ("first_name") into a label. Fields whose heading is still
// empty are labelled this way.
func DefaultLabeler(name string) string {
	var segments []string
	for _, word := range splitWordsPattern.Split(splitCamel(name), -1) {
		if word == "" {
			continue
		}
		segments = append(segments, titleCase(word))
	}
	return strings.Join(segments, " ")
}

func splitCamel(input string) string {
	var out strings.Builder
	prev := rune(0)
	for i, r := range input {
		if i > 0 && isLower(prev) && isUpper(r) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
		prev = r
	}
	return out.String()
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }

func titleCase(word string) string {
	if word == "" {
		return ""
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}
