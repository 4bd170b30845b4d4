package usecase

import (
	"regexp"
	"strings"
)

var shortURIPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NormalizeShortURI trims and lowercases s. It reports false when the result
// is not a valid slug.
func NormalizeShortURI(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, shortURIPattern.MatchString(s)
}
