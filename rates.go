package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Court and rate tables for the supported venues. Court numbers map to the
// site-internal codes carried inside the slot descriptor.
type CourtInfo struct {
	CValue string
	Codes  map[int]int
}

var courtInfo = map[string]CourtInfo{
	"성사야외": {
		CValue: "5",
		Codes:  map[int]int{1: 17, 2: 18, 3: 19, 4: 20, 5: 21, 6: 22, 7: 23, 8: 24},
	},
	"충장": {
		CValue: "7",
		Codes:  map[int]int{1: 28, 2: 29, 3: 30, 4: 31},
	},
}

// paymentRates is the per-slot price in KRW: [weekend][night].
var paymentRates = map[bool]map[bool]int{
	false: {false: 8000, true: 10000},  // weekday day/night
	true:  {false: 10000, true: 13000}, // weekend day/night
}

// slotStartHours are the two-hour slots the site offers.
var slotStartHours = []int{6, 8, 10, 12, 14, 16, 18, 20}

// ResolveCourt looks a venue name up in the static table.
func ResolveCourt(name string) (CourtInfo, error) {
	info, ok := courtInfo[name]
	if !ok {
		names := make([]string, 0, len(courtInfo))
		for n := range courtInfo {
			names = append(names, n)
		}
		sort.Strings(names)
		return CourtInfo{}, fmt.Errorf("unknown court %q (known: %v)", name, names)
	}
	return info, nil
}

// CourtCode resolves a venue name and court number to the site-internal
// court code.
func CourtCode(name string, number int) (CourtInfo, int, error) {
	info, err := ResolveCourt(name)
	if err != nil {
		return CourtInfo{}, 0, err
	}
	code, ok := info.Codes[number]
	if !ok {
		return CourtInfo{}, 0, fmt.Errorf("%s에는 %d번 코트가 존재하지 않습니다", name, number)
	}
	return info, code, nil
}

// validSlotHour reports whether hour is one of the offered slot starts.
func validSlotHour(hour int) bool {
	for _, h := range slotStartHours {
		if h == hour {
			return true
		}
	}
	return false
}

// RateFor returns the slot price for a reservation date and start hour.
// Weekend is Saturday/Sunday; night starts at 18:00. halfPrice applies the
// citizen/senior discount.
func RateFor(date time.Time, startHour int, halfPrice bool) int {
	amount := paymentRates[isWeekend(date)][isNightHour(startHour)]
	if halfPrice {
		amount /= 2
	}
	return amount
}

// BuildSlotParts assembles the five-part slot descriptor the reservation
// endpoint expects: date|cvalue|courtCode|startHour|price.
func BuildSlotParts(date string, info CourtInfo, courtCode, startHour, amount int) []string {
	return []string{
		date,
		info.CValue,
		strconv.Itoa(courtCode),
		strconv.Itoa(startHour),
		strconv.Itoa(amount),
	}
}
