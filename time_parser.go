package main

import (
	"fmt"
	"strings"
	"time"
)

// ParseReservationDate parses the cdate flag. The site only accepts
// YYYY-MM-DD, so anything else is rejected with a hint rather than
// guessed at.
func ParseReservationDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)

	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reservation date '%s'. Use format: YYYY-MM-DD (e.g., 2025-10-22)", dateStr)
	}
	return t, nil
}

// isWeekend reports whether the reservation date falls on the weekend rate.
func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// isNightHour reports whether a slot start hour is billed at the night rate.
func isNightHour(startHour int) bool {
	return startHour >= 18
}
