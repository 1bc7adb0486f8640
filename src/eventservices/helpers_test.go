package eventservices

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const dayFileHeader = "ticker,volume,open,close,high,low,window_start,transactions"

// windowStart is the nanosecond stamp of a day bar, midnight New York time.
func windowStart(date time.Time) int64 {
	return date.Add(5 * time.Hour).UnixNano()
}

func writeDayFile(t *testing.T, root, rel string, lines ...string) {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(strings.Join(append([]string{dayFileHeader}, lines...), "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))
}

type contractOpt func(c *eventmodels.ContractDay)

func withBid(bid float64) contractOpt {
	return func(c *eventmodels.ContractDay) { c.Bid = eventmodels.Float64(bid) }
}

func withAsk(ask float64) contractOpt {
	return func(c *eventmodels.ContractDay) { c.Ask = eventmodels.Float64(ask) }
}

func withDelta(delta float64) contractOpt {
	return func(c *eventmodels.ContractDay) { c.Delta = eventmodels.Float64(delta) }
}

func withOpenInterest(oi int64) contractOpt {
	return func(c *eventmodels.ContractDay) { c.OpenInterest = eventmodels.Int64(oi) }
}

func withVolume(v int64) contractOpt {
	return func(c *eventmodels.ContractDay) { c.Volume = v }
}

func withOtmPct(otm float64) contractOpt {
	return func(c *eventmodels.ContractDay) {
		c.OtmPct = otm
		c.IsITM = otm < 0
	}
}

func withPremiumYield(y float64) contractOpt {
	return func(c *eventmodels.ContractDay) { c.PremiumYieldPct = y }
}

func withDaysToExpiry(d int) contractOpt {
	return func(c *eventmodels.ContractDay) { c.DaysToExpiry = d }
}

func newContractDay(t *testing.T, symbol string, tradeDate time.Time, opts ...contractOpt) eventmodels.ContractDay {
	t.Helper()

	ticker, err := eventmodels.DecodeOptionTicker(symbol)
	require.NoError(t, err)

	c := eventmodels.ContractDay{
		Symbol:                eventmodels.OptionSymbol(symbol),
		Ticker:                ticker,
		TradeDate:             tradeDate,
		Open:                  1,
		Close:                 1,
		High:                  1.2,
		Low:                   0.8,
		Volume:                100,
		UnderlyingSpot:        100,
		UnderlyingClose:       100,
		Premium:               1,
		PremiumYieldPct:       1,
		PremiumLow:            0.8,
		PremiumYieldPctLow:    0.8,
		TimeRemainingCategory: eventmodels.TimeRemainingWeekly,
		ExpirationCycle:       eventmodels.ExpirationCycleWeekly,
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
