package validators

import (
	"errors"
	"time"
)

var ErrDateInvalid = errors.New("invalid date provided, use RFC3339 or YYYY-MM-DD")

// ParseDate accepts the two date shapes clients send
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}

	return time.Time{}, ErrDateInvalid
}
