package main

import (
	"testing"
	"time"
)

func TestParseReservationDate(t *testing.T) {
	tests := []struct {
		input string
		year  int
		month time.Month
		day   int
	}{
		{"2025-10-22", 2025, time.October, 22},
		{"2026-01-01", 2026, time.January, 1},
		{" 2025-12-31 ", 2025, time.December, 31},
	}

	for _, test := range tests {
		date, err := ParseReservationDate(test.input)
		if err != nil {
			t.Errorf("ParseReservationDate(%q) failed: %v", test.input, err)
			continue
		}
		if date.Year() != test.year || date.Month() != test.month || date.Day() != test.day {
			t.Errorf("ParseReservationDate(%q) = %v", test.input, date)
		}
	}
}

func TestParseReservationDateRejects(t *testing.T) {
	inputs := []string{
		"",
		"2025/10/22",
		"22-10-2025",
		"2025-13-01",
		"2025-10-32",
		"20251022",
		"tomorrow",
	}

	for _, input := range inputs {
		if _, err := ParseReservationDate(input); err == nil {
			t.Errorf("ParseReservationDate(%q) should fail", input)
		}
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		date    string
		weekend bool
	}{
		{"2025-10-20", false}, // Monday
		{"2025-10-22", false}, // Wednesday
		{"2025-10-24", false}, // Friday
		{"2025-10-25", true},  // Saturday
		{"2025-10-26", true},  // Sunday
	}

	for _, test := range tests {
		date, err := ParseReservationDate(test.date)
		if err != nil {
			t.Fatalf("ParseReservationDate(%q) failed: %v", test.date, err)
		}
		if isWeekend(date) != test.weekend {
			t.Errorf("isWeekend(%s) = %v, expected %v", test.date, !test.weekend, test.weekend)
		}
	}
}

func TestIsNightHour(t *testing.T) {
	for _, hour := range []int{6, 8, 10, 12, 14, 16} {
		if isNightHour(hour) {
			t.Errorf("hour %d should be a day rate", hour)
		}
	}
	for _, hour := range []int{18, 20} {
		if !isNightHour(hour) {
			t.Errorf("hour %d should be a night rate", hour)
		}
	}
}
