package utils

import (
	"fmt"
	"time"
)

var transactionDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	ShortDashDateLayout,
}

// ParseTransactionDate accepts RFC3339, a local ISO timestamp without zone
// (interpreted as UTC) or a plain date. An empty string yields the zero time.
func ParseTransactionDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range transactionDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected RFC3339 or %s", value, ShortDashDateLayout)
}
