package eventmodels

import "fmt"

type TimeRemainingCategory string

const (
	TimeRemainingWeekly  TimeRemainingCategory = "WEEKLY"
	TimeRemainingMonthly TimeRemainingCategory = "MONTHLY"
)

// WeeklyThresholdDays is the largest days-to-expiry still bucketed as weekly.
const WeeklyThresholdDays = 7

func NewTimeRemainingCategory(daysToExpiry, weeklyThresholdDays int) TimeRemainingCategory {
	if daysToExpiry <= weeklyThresholdDays {
		return TimeRemainingWeekly
	}

	return TimeRemainingMonthly
}

func (c TimeRemainingCategory) Validate() error {
	if c != TimeRemainingWeekly && c != TimeRemainingMonthly {
		return fmt.Errorf("TimeRemainingCategory: Validate: invalid category: %s", c)
	}

	return nil
}
