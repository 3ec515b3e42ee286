package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase identifiers to snake_case, keeping
// acronyms together ("HIPID" -> "hipid", "DateRangeFrom" -> "date_range_from").
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 &&
			(unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
