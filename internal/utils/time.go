package utils

import (
	"strings"
	"time"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02 15:04:05"
	layoutClock    = "15:04"
)

// ParseDate parses YYYY-MM-DD in local timezone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layoutDate, strings.TrimSpace(s), time.Local)
}

// ParseClock validates an HH:MM departure time and returns it normalized.
func ParseClock(s string) (string, error) {
	t, err := time.Parse(layoutClock, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format(layoutClock), nil
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM:SS" in local timezone.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(layoutDateTime)
}

// FormatDay formats a DATE column value as YYYY-MM-DD without a zone shift.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layoutDate)
}
