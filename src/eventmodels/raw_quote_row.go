package eventmodels

import "time"

// RawQuoteRow is one strictly parsed row of a vendor day file.
type RawQuoteRow struct {
	Ticker            OptionSymbol
	Volume            int64
	Open              float64
	Close             float64
	High              float64
	Low               float64
	WindowStart       int64
	Transactions      int64
	Bid               *float64
	Ask               *float64
	OpenInterest      *int64
	Delta             *float64
	ImpliedVolatility *float64
}

// TradeDate is the UTC calendar date of the bar. Day bars open at midnight
// New York time, which is still the same date in UTC.
func (r RawQuoteRow) TradeDate() time.Time {
	t := time.Unix(0, r.WindowStart).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
