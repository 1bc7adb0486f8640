package eventservices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/filesource"
)

const (
	DefaultAggregatorConcurrency = 4
	DefaultPriceFetchTimeout     = 60 * time.Second
)

type AggregatorConfig struct {
	Concurrency       int
	PriceFetchTimeout time.Duration
	Normalizer        NormalizerConfig
}

// Aggregator merges the day files of one period into a per-symbol Dataset.
type Aggregator struct {
	src               filesource.FileSource
	prices            UnderlyingPriceSource
	normalizer        *Normalizer
	concurrency       int
	priceFetchTimeout time.Duration
}

func NewAggregator(src filesource.FileSource, prices UnderlyingPriceSource, cfg AggregatorConfig) (*Aggregator, error) {
	if src == nil {
		return nil, fmt.Errorf("NewAggregator: missing file source")
	}

	if prices == nil {
		return nil, fmt.Errorf("NewAggregator: missing underlying price source")
	}

	normalizer, err := NewNormalizer(cfg.Normalizer)
	if err != nil {
		return nil, fmt.Errorf("NewAggregator: %w", err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultAggregatorConcurrency
	}

	timeout := cfg.PriceFetchTimeout
	if timeout <= 0 {
		timeout = DefaultPriceFetchTimeout
	}

	return &Aggregator{
		src:               src,
		prices:            prices,
		normalizer:        normalizer,
		concurrency:       concurrency,
		priceFetchTimeout: timeout,
	}, nil
}

type rowCounters struct {
	rows metric.Int64Counter
}

func newRowCounters() rowCounters {
	rows, err := otel.Meter("aggregator").Int64Counter("aggregator.rows",
		metric.WithDescription("day file rows by outcome"))
	if err != nil {
		log.Warnf("newRowCounters: failed to create counter: %v", err)
	}

	return rowCounters{rows: rows}
}

func (c rowCounters) record(ctx context.Context, symbol string, counts eventmodels.RowCounts) {
	if c.rows == nil {
		return
	}

	outcomes := map[string]int64{
		"accepted":          counts.Accepted,
		"other_underlying":  counts.Ignored,
		"malformed_ticker":  counts.MalformedTicker,
		"incomplete_record": counts.IncompleteRecord,
		"unparseable_row":   counts.Unparseable,
	}

	for outcome, n := range outcomes {
		if n > 0 {
			c.rows.Add(ctx, n, metric.WithAttributes(attribute.String("symbol", symbol), attribute.String("outcome", outcome)))
		}
	}
}

func (a *Aggregator) fetchPrices(ctx context.Context, symbol string, period eventmodels.Period) (map[string]eventmodels.PriceContext, error) {
	ctx, cancel := context.WithTimeout(ctx, a.priceFetchTimeout)
	defer cancel()

	return a.prices.FetchDailyPrices(ctx, symbol, period)
}

// Aggregate builds the dataset of symbol over period. Per row and per file
// failures are counted in the report; only discovery, price acquisition and
// cancellation fail the run.
func (a *Aggregator) Aggregate(ctx context.Context, symbol string, period eventmodels.Period) (*eventmodels.Dataset, *eventmodels.AggregationReport, error) {
	ctx, span := otel.Tracer("Aggregator").Start(ctx, "Aggregator.Aggregate")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("period", period.String()))

	report := &eventmodels.AggregationReport{}

	if symbol == "" {
		return nil, report, fmt.Errorf("Aggregator.Aggregate: missing symbol")
	}

	if err := period.Validate(); err != nil {
		return nil, report, fmt.Errorf("Aggregator.Aggregate: %w", err)
	}

	files, err := filesource.Discover(ctx, a.src, period)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, report, fmt.Errorf("Aggregator.Aggregate: %w", err)
	}

	report.FilesDiscovered = int64(len(files))
	log.WithContext(ctx).Infof("aggregating %s %s from %d day files in %s", symbol, period, len(files), a.src)

	prices, err := a.fetchPrices(ctx, symbol, period)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, report, fmt.Errorf("Aggregator.Aggregate: failed to fetch underlying prices: %w", err)
	}

	if len(prices) == 0 {
		log.WithContext(ctx).Warnf("no underlying prices for %s %s, every row will be incomplete", symbol, period)
	}

	counters := newRowCounters()

	var mu sync.Mutex
	var records []eventmodels.ContractDay

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, f := range files {
		f := f

		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out, counts, err := a.processFile(gctx, f, symbol, prices)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}

				log.WithContext(gctx).Warnf("skipping day file %s: %v", f, err)
				report.AddFailedFile(f)
				return nil
			}

			mu.Lock()
			records = append(records, out...)
			mu.Unlock()

			report.AddFile(counts)
			counters.record(gctx, symbol, counts)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, report, fmt.Errorf("Aggregator.Aggregate: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, report, fmt.Errorf("Aggregator.Aggregate: %w", err)
	}

	ds := eventmodels.NewDataset(symbol, period, records)

	span.SetAttributes(attribute.Int("records", ds.Len()), attribute.Int64("rows_skipped", report.RowsSkipped()))
	log.WithContext(ctx).Infof("aggregated %s %s: %s", symbol, period, report)

	return ds, report, nil
}

// matchesUnderlying checks the packed prefix, O:<SYM> followed by the
// expiration digits, so that O:TSLA never matches O:TSLL.
func matchesUnderlying(symbol eventmodels.OptionSymbol, underlying string) bool {
	prefix := eventmodels.OptionSymbolPrefix + underlying
	s := string(symbol)
	return len(s) > len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) && s[len(prefix)] >= '0' && s[len(prefix)] <= '9'
}

func (a *Aggregator) processFile(ctx context.Context, path, symbol string, prices map[string]eventmodels.PriceContext) ([]eventmodels.ContractDay, eventmodels.RowCounts, error) {
	var counts eventmodels.RowCounts

	rc, err := a.src.Open(ctx, path)
	if err != nil {
		return nil, counts, err
	}
	defer rc.Close()

	var out []eventmodels.ContractDay
	broken, err := ScanDayFile(rc, strings.HasSuffix(path, ".gz"), func(dto *eventmodels.RawQuoteRowDTO) {
		counts.Read++

		row, err := dto.ToModel()
		if err != nil {
			counts.Unparseable++
			return
		}

		ticker, err := row.Ticker.Decode()
		if err != nil {
			counts.MalformedTicker++
			return
		}

		if !matchesUnderlying(row.Ticker, symbol) {
			counts.Ignored++
			return
		}

		price, ok := prices[row.TradeDate().Format(eventmodels.DateLayout)]
		if !ok {
			counts.IncompleteRecord++
			return
		}

		cd, err := a.normalizer.Normalize(*row, ticker, price)
		if err != nil {
			if errors.Is(err, eventmodels.ErrMalformedTicker) {
				counts.MalformedTicker++
			} else {
				counts.IncompleteRecord++
			}
			return
		}

		out = append(out, *cd)
		counts.Accepted++
	})
	if err != nil {
		return nil, counts, fmt.Errorf("processFile: %s: %v: %w", path, err, eventmodels.ErrSourceUnavailable)
	}

	counts.Read += broken
	counts.Unparseable += broken

	return out, counts, nil
}
