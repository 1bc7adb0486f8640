package eventmodels

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OptionTicker is the structured form of a packed option symbol.
type OptionTicker struct {
	Underlying string
	Expiration time.Time
	OptionType OptionType
	Strike     decimal.Decimal
}

// NewOptionTicker truncates the expiration to its calendar date in UTC.
func NewOptionTicker(underlying string, expiration time.Time, optionType OptionType, strike decimal.Decimal) OptionTicker {
	return OptionTicker{
		Underlying: underlying,
		Expiration: time.Date(expiration.Year(), expiration.Month(), expiration.Day(), 0, 0, 0, 0, time.UTC),
		OptionType: optionType,
		Strike:     strike,
	}
}

func (t OptionTicker) Equal(other OptionTicker) bool {
	return t.Underlying == other.Underlying &&
		t.Expiration.Equal(other.Expiration) &&
		t.OptionType == other.OptionType &&
		t.Strike.Equal(other.Strike)
}

func (t OptionTicker) Encode() (OptionSymbol, error) {
	return NewOptionSymbol(t)
}

func (t OptionTicker) StrikeFloat() float64 {
	return t.Strike.InexactFloat64()
}

func (t OptionTicker) String() string {
	return fmt.Sprintf("%s %s %s %s", t.Underlying, t.Expiration.Format("2006-01-02"), t.Strike.String(), t.OptionType)
}

// DecodeOptionTicker parses a packed symbol such as O:TSLA200221C00010000.
func DecodeOptionTicker(raw string) (OptionTicker, error) {
	return OptionSymbol(raw).Decode()
}
