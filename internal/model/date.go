package model

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used everywhere. ISO dates
// order correctly under plain string comparison, so due-date checks
// compare the strings directly.
const DateLayout = "2006-01-02"

// Today returns the current local date as an ISO string.
func Today() string {
	return time.Now().Format(DateLayout)
}

// ParseDate validates s as an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, s)
	}
	return t, nil
}

// AddDays returns the date days whole days after date.
func AddDays(date string, days int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, days).Format(DateLayout), nil
}
