package core

import "time"

// DaysInMonth returns the number of calendar days in the given month,
// accounting for leap years.
func DaysInMonth(year, month int) int {
	// Day zero of the next month is the last day of this month.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DatesInMonth returns every date of the month in calendar order.
func DatesInMonth(year, month int) []Date {
	days := DaysInMonth(year, month)
	dates := make([]Date, 0, days)
	for d := 1; d <= days; d++ {
		dates = append(dates, NewDate(year, month, d))
	}
	return dates
}
