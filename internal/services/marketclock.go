package services

import "time"

// NSE session bounds, inclusive on both ends.
const (
	sessionOpenHour   = 9
	sessionOpenMinute = 15
	sessionCloseHour  = 15
	sessionCloseMin   = 30
)

// MarketOpen reports whether the trading session covers the given instant:
// closed on Saturday and Sunday, open Mon-Fri between 09:15 and 15:30
// local wall-clock time, inclusive.
func MarketOpen(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minutes := now.Hour()*60 + now.Minute()
	opensAt := sessionOpenHour*60 + sessionOpenMinute
	closesAt := sessionCloseHour*60 + sessionCloseMin
	return minutes >= opensAt && minutes <= closesAt
}

func MarketStatus(now time.Time) string {
	if MarketOpen(now) {
		return "Open"
	}
	return "Closed"
}
