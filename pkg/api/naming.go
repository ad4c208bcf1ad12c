package api

import (
	"strings"
	"unicode"
)

// SnakeCase converts a camelCase or PascalCase key to lower snake_case.
// Keys that are already snake_case are returned unchanged.
//
//	categoryId  -> category_id
//	priceCents  -> price_cents
//	HTTPStatus  -> http_status
func SnakeCase(key string) string {
	runes := []rune(key)
	var b strings.Builder
	b.Grow(len(key) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteRune('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
