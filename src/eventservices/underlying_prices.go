package eventservices

import (
	"context"
	"fmt"
	"time"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

// UnderlyingPriceSource supplies the underlying's daily prices, keyed by
// trade date (YYYY-MM-DD).
type UnderlyingPriceSource interface {
	FetchDailyPrices(ctx context.Context, symbol string, period eventmodels.Period) (map[string]eventmodels.PriceContext, error)
}

// QuoteSource returns the latest known price of an underlying.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (eventmodels.PriceContext, error)
}

// StaticPriceSource serves prices that are already known, independent of the
// symbol asked for.
type StaticPriceSource map[string]eventmodels.PriceContext

func (s StaticPriceSource) FetchDailyPrices(ctx context.Context, symbol string, period eventmodels.Period) (map[string]eventmodels.PriceContext, error) {
	out := make(map[string]eventmodels.PriceContext)
	for date, price := range s {
		t, err := time.Parse(eventmodels.DateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("StaticPriceSource.FetchDailyPrices: %w", err)
		}

		if period.Contains(t) {
			out[date] = price.WithDefaults()
		}
	}

	return out, nil
}

func (s StaticPriceSource) GetQuote(ctx context.Context, symbol string) (eventmodels.PriceContext, error) {
	return latestPrice(s)
}

func latestPrice(prices map[string]eventmodels.PriceContext) (eventmodels.PriceContext, error) {
	latest := ""
	for date := range prices {
		if date > latest {
			latest = date
		}
	}

	if latest == "" {
		return eventmodels.PriceContext{}, fmt.Errorf("latestPrice: no prices available")
	}

	return prices[latest].WithDefaults(), nil
}
