package eventmodels

import (
	"fmt"
	"math"
)

// ScreenCriteria holds optional inclusive bounds. A nil bound does not filter.
// Percentages use the same units as ContractDay (percentage points).
type ScreenCriteria struct {
	MinOtmPct       *float64
	MaxOtmPct       *float64
	DeltaLo         *float64
	DeltaHi         *float64
	MinBid          *float64
	MinOpenInterest *int64
	MinVolume       *int64
	MaxSpreadToMid  *float64
	MinPremiumYield *float64
	ExpirationDays  *int
	OptionType      *OptionType
	RankMetric      RankMetric
	Limit           int
}

func (c ScreenCriteria) Metric() RankMetric {
	if c.RankMetric == "" {
		return DefaultRankMetric
	}

	return c.RankMetric
}

func (c ScreenCriteria) Validate() error {
	bounds := []struct {
		name  string
		value *float64
	}{
		{"min otm pct", c.MinOtmPct},
		{"max otm pct", c.MaxOtmPct},
		{"delta lo", c.DeltaLo},
		{"delta hi", c.DeltaHi},
		{"min bid", c.MinBid},
		{"max spread to mid", c.MaxSpreadToMid},
		{"min premium yield", c.MinPremiumYield},
	}

	// a NaN bound compares false against every value
	for _, b := range bounds {
		if b.value != nil && math.IsNaN(*b.value) {
			return fmt.Errorf("ScreenCriteria.Validate: %s is NaN: %w", b.name, ErrInvalidCriteria)
		}
	}

	if c.MinOtmPct != nil && c.MaxOtmPct != nil && *c.MinOtmPct > *c.MaxOtmPct {
		return fmt.Errorf("ScreenCriteria.Validate: min otm pct %v > max otm pct %v: %w", *c.MinOtmPct, *c.MaxOtmPct, ErrInvalidCriteria)
	}

	if c.DeltaLo != nil && c.DeltaHi != nil && *c.DeltaLo > *c.DeltaHi {
		return fmt.Errorf("ScreenCriteria.Validate: delta lo %v > delta hi %v: %w", *c.DeltaLo, *c.DeltaHi, ErrInvalidCriteria)
	}

	if c.MinBid != nil && *c.MinBid < 0 {
		return fmt.Errorf("ScreenCriteria.Validate: negative min bid %v: %w", *c.MinBid, ErrInvalidCriteria)
	}

	if c.MinOpenInterest != nil && *c.MinOpenInterest < 0 {
		return fmt.Errorf("ScreenCriteria.Validate: negative min open interest %v: %w", *c.MinOpenInterest, ErrInvalidCriteria)
	}

	if c.MinVolume != nil && *c.MinVolume < 0 {
		return fmt.Errorf("ScreenCriteria.Validate: negative min volume %v: %w", *c.MinVolume, ErrInvalidCriteria)
	}

	if c.MaxSpreadToMid != nil && *c.MaxSpreadToMid < 0 {
		return fmt.Errorf("ScreenCriteria.Validate: negative max spread to mid %v: %w", *c.MaxSpreadToMid, ErrInvalidCriteria)
	}

	if c.ExpirationDays != nil && *c.ExpirationDays < 0 {
		return fmt.Errorf("ScreenCriteria.Validate: negative expiration days %v: %w", *c.ExpirationDays, ErrInvalidCriteria)
	}

	if c.OptionType != nil {
		if err := c.OptionType.Validate(); err != nil {
			return fmt.Errorf("ScreenCriteria.Validate: %v: %w", err, ErrInvalidCriteria)
		}
	}

	if err := c.Metric().Validate(); err != nil {
		return fmt.Errorf("ScreenCriteria.Validate: %v: %w", err, ErrInvalidCriteria)
	}

	if c.Limit < 0 {
		return fmt.Errorf("ScreenCriteria.Validate: negative limit %d: %w", c.Limit, ErrInvalidCriteria)
	}

	return nil
}
