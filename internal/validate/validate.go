package validate

import (
	"regexp"
	"strings"

	"apiadventures/internal/domain"
)

var reCategory = regexp.MustCompile(`^[A-Za-z]{1,20}$`)

// Category validates a category filter, accepting any letter case and
// returning the canonical spelling.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !reCategory.MatchString(s) {
		return "", false
	}
	for _, c := range []string{domain.TypeEquipment, domain.TypeFood} {
		if strings.EqualFold(s, c) {
			return c, true
		}
	}
	return "", false
}

// CachePolicy validates the cache write policy name.
func CachePolicy(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "merge", "replace":
		return s, true
	}
	return "", false
}
