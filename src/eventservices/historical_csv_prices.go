package eventservices

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const historicalDateLayout = "01/02/2006"

// HistoricalPriceRowDTO is one row of a Nasdaq style HistoricalData_<SYM>.csv
// export. Prices carry a leading '$'.
type HistoricalPriceRowDTO struct {
	Date   string `csv:"Date"`
	Close  string `csv:"Close/Last"`
	Volume string `csv:"Volume"`
	Open   string `csv:"Open"`
	High   string `csv:"High"`
	Low    string `csv:"Low"`
}

func parseDollars(field, s string) (float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}

	return v, nil
}

func (dto *HistoricalPriceRowDTO) ToModel() (time.Time, eventmodels.PriceContext, error) {
	date, err := time.Parse(historicalDateLayout, strings.TrimSpace(dto.Date))
	if err != nil {
		return time.Time{}, eventmodels.PriceContext{}, fmt.Errorf("HistoricalPriceRowDTO.ToModel: date: %w", err)
	}

	var p eventmodels.PriceContext
	fields := []struct {
		name  string
		value string
		dest  *float64
	}{
		{"Close/Last", dto.Close, &p.Close},
		{"Open", dto.Open, &p.Open},
		{"High", dto.High, &p.High},
		{"Low", dto.Low, &p.Low},
	}

	for _, f := range fields {
		if *f.dest, err = parseDollars(f.name, f.value); err != nil {
			return time.Time{}, eventmodels.PriceContext{}, fmt.Errorf("HistoricalPriceRowDTO.ToModel: %w", err)
		}
	}

	if p.Close <= 0 {
		return time.Time{}, eventmodels.PriceContext{}, fmt.Errorf("HistoricalPriceRowDTO.ToModel: %s: missing close", dto.Date)
	}

	return date, p.WithDefaults(), nil
}

func ReadHistoricalPrices(r io.Reader) (map[string]eventmodels.PriceContext, error) {
	var rows []*HistoricalPriceRowDTO
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("ReadHistoricalPrices: failed to unmarshal csv: %w", err)
	}

	prices := make(map[string]eventmodels.PriceContext, len(rows))
	for i, row := range rows {
		date, price, err := row.ToModel()
		if err != nil {
			return nil, fmt.Errorf("ReadHistoricalPrices: row %d: %w", i+2, err)
		}

		prices[date.Format(eventmodels.DateLayout)] = price
	}

	return prices, nil
}

// HistoricalCSVPriceSource is the public, offline price source: one
// HistoricalData_<SYM>.csv per symbol under Dir/<SYM>/ or Dir/.
type HistoricalCSVPriceSource struct {
	Dir string
}

func (s *HistoricalCSVPriceSource) findFile(symbol string) (string, error) {
	symbol = strings.ToUpper(symbol)
	candidates := []string{
		filepath.Join(s.Dir, symbol, fmt.Sprintf("HistoricalData_%s.csv", symbol)),
		filepath.Join(s.Dir, fmt.Sprintf("HistoricalData_%s.csv", symbol)),
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}

	matches, _ := filepath.Glob(filepath.Join(s.Dir, symbol, "HistoricalData*.csv"))
	if len(matches) > 0 {
		return matches[0], nil
	}

	return "", fmt.Errorf("HistoricalCSVPriceSource: no historical data for %s in %s: %w", symbol, s.Dir, eventmodels.ErrSourceUnavailable)
}

func (s *HistoricalCSVPriceSource) load(symbol string) (map[string]eventmodels.PriceContext, error) {
	path, err := s.findFile(symbol)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("HistoricalCSVPriceSource: %v: %w", err, eventmodels.ErrSourceUnavailable)
	}
	defer f.Close()

	return ReadHistoricalPrices(f)
}

func (s *HistoricalCSVPriceSource) FetchDailyPrices(ctx context.Context, symbol string, period eventmodels.Period) (map[string]eventmodels.PriceContext, error) {
	all, err := s.load(symbol)
	if err != nil {
		return nil, fmt.Errorf("HistoricalCSVPriceSource.FetchDailyPrices: %w", err)
	}

	return StaticPriceSource(all).FetchDailyPrices(ctx, symbol, period)
}

func (s *HistoricalCSVPriceSource) GetQuote(ctx context.Context, symbol string) (eventmodels.PriceContext, error) {
	all, err := s.load(symbol)
	if err != nil {
		return eventmodels.PriceContext{}, fmt.Errorf("HistoricalCSVPriceSource.GetQuote: %w", err)
	}

	return latestPrice(all)
}
