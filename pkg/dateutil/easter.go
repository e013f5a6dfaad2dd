package dateutil

import "time"

// IsLeapYear reports whether year is a Gregorian leap year
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Easter returns Easter Sunday of the Gregorian year.
//
// The Paschal full moon is located from the golden number and the epact:
// the Julian epact is corrected by the solar (S) and lunar (L) century
// equations, the full moon falls on day 44-epact of March (plus a lunation
// when that lands before March 21), and Easter is the first Sunday strictly
// after it.
func Easter(year int) time.Time {
	golden := year%19 + 1
	century := year/100 + 1
	solar := 3 * century / 4
	lunar := (8*century + 5) / 25

	julianEpact := 11 * (golden - 1) % 30
	epact := mod(julianEpact-solar+lunar+8, 30)
	if epact == 0 {
		epact = 30
	}

	// Epact 24 (always) and 25 (late in the 19-year cycle) would put the
	// full moon on April 19/18; the tables cap it at April 18/17.
	if epact == 24 || (epact == 25 && golden > 11) {
		epact++
	}

	fullMoon := 44 - epact
	if fullMoon < 21 {
		fullMoon += 30
	}
	moon := Date(year, time.March, fullMoon)

	return moon.AddDate(0, 0, 7-int(moon.Weekday()))
}

func mod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}
