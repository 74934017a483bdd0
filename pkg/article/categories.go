package article

import "strings"

// NormalizeCategory lowercases and trims a category name.
func NormalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidateCategory normalizes name and checks it against the allow-list.
// Unknown categories fall back to DefaultCategory so a noisy LLM answer
// never rejects an otherwise valid extraction.
func ValidateCategory(name string, allowed []string) string {
	name = NormalizeCategory(name)
	if len(allowed) == 0 {
		allowed = DefaultCategories
	}

	for _, a := range allowed {
		if name == NormalizeCategory(a) {
			return name
		}
	}

	return DefaultCategory
}
