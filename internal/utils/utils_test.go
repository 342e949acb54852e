package utils

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("12,500.50")
	if err != nil || v != 12500.50 {
		t.Fatalf("ParseAmount = %v, %v", v, err)
	}
	if _, err := ParseAmount(" "); err == nil {
		t.Fatalf("expected error for blank amount")
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock(" 8:05 ")
	if err != nil || got != "08:05" {
		t.Fatalf("ParseClock = %q, %v", got, err)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected error for 25:00")
	}
}

func TestFormatDayKeepsCalendarDate(t *testing.T) {
	d := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	if got := FormatDay(d); got != "2026-11-02" {
		t.Fatalf("FormatDay = %q", got)
	}
	if FormatDay(time.Time{}) != "" {
		t.Fatalf("zero time should format empty")
	}
}

func TestDigitsOnlyAndNormalizeSpace(t *testing.T) {
	if got := DigitsOnly("+265 991-234"); got != "265991234" {
		t.Fatalf("DigitsOnly = %q", got)
	}
	if got := NormalizeSpace("  Zomba   City "); got != "Zomba City" {
		t.Fatalf("NormalizeSpace = %q", got)
	}
}
