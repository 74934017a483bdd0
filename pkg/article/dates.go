package article

import "time"

// dateLayouts are tried in order when parsing a published date.
// ISO first, then the formats news sites most commonly emit.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses a published-date string. Returns the zero time and false
// when the string is empty or matches none of the known layouts; an
// unparseable date is not an error, the field is simply left unset.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
