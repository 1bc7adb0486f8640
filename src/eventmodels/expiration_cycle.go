package eventmodels

import "time"

type ExpirationCycle string

const (
	ExpirationCycleMonthly ExpirationCycle = "monthly"
	ExpirationCycleWeekly  ExpirationCycle = "weekly"
)

// NewExpirationCycle classifies standard monthly expirations: the third Friday
// of the month, or the Thursday before it when the Friday is a market holiday.
func NewExpirationCycle(expiration time.Time) ExpirationCycle {
	thirdFriday := ThirdFriday(expiration.Year(), expiration.Month())
	date := time.Date(expiration.Year(), expiration.Month(), expiration.Day(), 0, 0, 0, 0, time.UTC)

	if date.Equal(thirdFriday) || date.Equal(thirdFriday.AddDate(0, 0, -1)) {
		return ExpirationCycleMonthly
	}

	return ExpirationCycleWeekly
}

func ThirdFriday(year int, month time.Month) time.Time {
	current := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for current.Weekday() != time.Friday {
		current = current.AddDate(0, 0, 1)
	}

	return current.AddDate(0, 0, 14)
}
