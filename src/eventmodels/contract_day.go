package eventmodels

import (
	"strings"
	"time"
)

// ContractDay is one option contract observed on one trading date, with the
// analytics columns derived by the normalizer.
type ContractDay struct {
	Symbol    OptionSymbol
	Ticker    OptionTicker
	TradeDate time.Time

	Open         float64
	Close        float64
	High         float64
	Low          float64
	Volume       int64
	Transactions int64
	WindowStart  int64

	Bid               *float64
	Ask               *float64
	OpenInterest      *int64
	Delta             *float64
	ImpliedVolatility *float64
	ProbabilityITM    *float64

	UnderlyingOpen  float64
	UnderlyingClose float64
	UnderlyingHigh  float64
	UnderlyingLow   float64
	UnderlyingSpot  float64

	OtmPct                float64
	IsITM                 bool
	Premium               float64
	PremiumYieldPct       float64
	PremiumLow            float64
	PremiumYieldPctLow    float64
	DaysToExpiry          int
	TimeRemainingCategory TimeRemainingCategory
	ExpirationCycle       ExpirationCycle
}

// SpreadToMid is (ask - bid) / midpoint. The second value is false when the
// record has no usable two-sided quote.
func (c *ContractDay) SpreadToMid() (float64, bool) {
	if c.Bid == nil || c.Ask == nil {
		return 0, false
	}

	mid := (*c.Ask + *c.Bid) / 2.0
	if mid <= 0 {
		return 0, false
	}

	return (*c.Ask - *c.Bid) / mid, true
}

func (c *ContractDay) Moneyness() OptionMoneyness {
	return NewOptionMoneyness(c.OtmPct)
}

// Less orders records by packed ticker, then trade date.
func (c *ContractDay) Less(other *ContractDay) bool {
	if cmp := strings.Compare(string(c.Symbol), string(other.Symbol)); cmp != 0 {
		return cmp < 0
	}

	return c.TradeDate.Before(other.TradeDate)
}
