package task

import "time"

const (
	monthsPerQuarter = 3
	daysPerWeek      = 7
)

// NextDue returns the next due time for a task with the given frequency,
// counted from base. Once and unknown frequencies return base unchanged.
//
// Monthly and quarterly keep the day of month. When that day does not exist
// in the target month, time.Date rolls the overflow into the following month
// (Jan 31 + 1 month = Mar 3, or Mar 2 in a leap year).
func NextDue(freq Frequency, base time.Time) time.Time {
	switch freq {
	case Daily:
		return base.AddDate(0, 0, 1)
	case Weekly:
		return base.AddDate(0, 0, daysPerWeek)
	case Biweekly:
		return base.AddDate(0, 0, 2*daysPerWeek)
	case Monthly:
		return addMonths(base, 1)
	case Quarterly:
		return addMonths(base, monthsPerQuarter)
	default:
		return base
	}
}

func addMonths(base time.Time, n int) time.Time {
	return time.Date(base.Year(), base.Month()+time.Month(n), base.Day(),
		base.Hour(), base.Minute(), base.Second(), base.Nanosecond(), base.Location())
}
