// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each element and drops empties and duplicates,
// preserving first-seen order.
func DedupeAndTrim(values []string) []string {
	return dedupe(values, strings.TrimSpace)
}

// DedupeAndTrimUpper is DedupeAndTrim with upper-casing, for code lists such
// as data categories and HI types.
func DedupeAndTrimUpper(values []string) []string {
	return dedupe(values, func(s string) string { return strings.ToUpper(strings.TrimSpace(s)) })
}

func dedupe(values []string, norm func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		n := norm(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		result = append(result, n)
	}
	return result
}

// TrimSpacePtr trims an optional string. Nil stays nil.
func TrimSpacePtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
