package eventservices

import (
	"context"
	"fmt"
	"strings"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

// PolygonPriceSource is the authenticated underlying price source.
type PolygonPriceSource struct {
	Client *polygon.Client
}

func NewPolygonPriceSource(apiKey string) (*PolygonPriceSource, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewPolygonPriceSource: missing api key")
	}

	return &PolygonPriceSource{
		Client: polygon.New(apiKey),
	}, nil
}

// Daily bars are stamped at midnight New York time, the same date in UTC.
func aggToPriceContext(agg models.Agg) (string, eventmodels.PriceContext) {
	date := time.Time(agg.Timestamp).UTC().Format(eventmodels.DateLayout)
	return date, eventmodels.PriceContext{
		Open:  agg.Open,
		Close: agg.Close,
		High:  agg.High,
		Low:   agg.Low,
		Spot:  agg.Close,
	}
}

func (s *PolygonPriceSource) FetchDailyPrices(ctx context.Context, symbol string, period eventmodels.Period) (map[string]eventmodels.PriceContext, error) {
	params := models.ListAggsParams{
		Ticker:     strings.ToUpper(symbol),
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(period.Start()),
		To:         models.Millis(period.End().AddDate(0, 0, -1)),
	}.WithOrder(models.Asc).WithAdjusted(true)

	log.WithContext(ctx).Debugf("fetching daily bars for %s over %s from polygon", symbol, period)

	iter := s.Client.ListAggs(ctx, params)

	prices := make(map[string]eventmodels.PriceContext)
	for iter.Next() {
		date, price := aggToPriceContext(iter.Item())
		prices[date] = price
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("PolygonPriceSource.FetchDailyPrices: %s: %w", symbol, err)
	}

	return prices, nil
}

func (s *PolygonPriceSource) GetQuote(ctx context.Context, symbol string) (eventmodels.PriceContext, error) {
	params := models.GetPreviousCloseAggParams{
		Ticker: strings.ToUpper(symbol),
	}.WithAdjusted(true)

	resp, err := s.Client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return eventmodels.PriceContext{}, fmt.Errorf("PolygonPriceSource.GetQuote: %s: %w", symbol, err)
	}

	if len(resp.Results) == 0 {
		return eventmodels.PriceContext{}, fmt.Errorf("PolygonPriceSource.GetQuote: %s: no results", symbol)
	}

	r := resp.Results[0]
	return eventmodels.PriceContext{
		Open:  r.Open,
		Close: r.Close,
		High:  r.High,
		Low:   r.Low,
		Spot:  r.Close,
	}, nil
}
