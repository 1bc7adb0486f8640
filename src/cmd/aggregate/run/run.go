package run

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
	"github.com/jiaming2012/options-screener/src/filesource"
	"github.com/jiaming2012/options-screener/src/utils"
)

const (
	DefaultLocalDataDir = "data/day_aggs"
	DefaultS3Prefix     = "us_options_opra/day_aggs_v1"
	DefaultS3Region     = "us-east-1"
)

type RunArgs struct {
	Symbol        string
	Period        eventmodels.Period
	DataDir       string
	PricesDir     string
	PolygonAPIKey string
	Source        filesource.Descriptor
	Aggregator    eventservices.AggregatorConfig

	// Prices overrides the price source chosen from PolygonAPIKey and PricesDir.
	Prices eventservices.UnderlyingPriceSource
}

type RunResult struct {
	DatasetPath string
	Records     int
	Report      *eventmodels.AggregationReport

	// Quote is the underlying's latest known price, nil when the price
	// source cannot quote.
	Quote *eventmodels.PriceContext
}

// DescriptorFromEnv builds the file source from USE_LOCAL_FILES,
// LOCAL_DATA_DIR and the MASSIVE_S3_* variables.
func DescriptorFromEnv() (filesource.Descriptor, error) {
	if utils.GetEnvBool("USE_LOCAL_FILES") {
		return filesource.Descriptor{
			Kind:      filesource.KindLocal,
			LocalRoot: utils.GetEnvOrDefault("LOCAL_DATA_DIR", DefaultLocalDataDir),
		}, nil
	}

	accessKey, err := utils.GetEnv("MASSIVE_S3_ACCESS_KEY")
	if err != nil {
		return filesource.Descriptor{}, fmt.Errorf("DescriptorFromEnv: %w", err)
	}

	secretKey, err := utils.GetEnv("MASSIVE_API_KEY")
	if err != nil {
		return filesource.Descriptor{}, fmt.Errorf("DescriptorFromEnv: %w", err)
	}

	bucket, err := utils.GetEnv("MASSIVE_S3_BUCKET")
	if err != nil {
		return filesource.Descriptor{}, fmt.Errorf("DescriptorFromEnv: %w", err)
	}

	return filesource.Descriptor{
		Kind: filesource.KindS3,
		S3: filesource.S3Config{
			Endpoint:  utils.GetEnvOrDefault("MASSIVE_S3_ENDPOINT", ""),
			Region:    utils.GetEnvOrDefault("MASSIVE_S3_REGION", DefaultS3Region),
			Bucket:    bucket,
			Prefix:    utils.GetEnvOrDefault("MASSIVE_S3_PREFIX", DefaultS3Prefix),
			AccessKey: accessKey,
			SecretKey: secretKey,
		},
	}, nil
}

// NewPriceSource prefers the authenticated vendor and falls back to the
// offline historical files.
func NewPriceSource(polygonAPIKey, pricesDir string) (eventservices.UnderlyingPriceSource, error) {
	if polygonAPIKey != "" {
		src, err := eventservices.NewPolygonPriceSource(polygonAPIKey)
		if err != nil {
			return nil, fmt.Errorf("NewPriceSource: %w", err)
		}

		return src, nil
	}

	if pricesDir == "" {
		return nil, fmt.Errorf("NewPriceSource: set POLYGON_API_KEY or --prices-dir")
	}

	return &eventservices.HistoricalCSVPriceSource{Dir: pricesDir}, nil
}

func Run(ctx context.Context, args RunArgs) (RunResult, error) {
	symbol := strings.ToUpper(strings.TrimSpace(args.Symbol))
	if symbol == "" {
		return RunResult{}, fmt.Errorf("Run: missing symbol")
	}

	if args.DataDir == "" {
		return RunResult{}, fmt.Errorf("Run: missing data dir")
	}

	src, err := filesource.NewFileSource(args.Source)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	prices := args.Prices
	if prices == nil {
		if prices, err = NewPriceSource(args.PolygonAPIKey, args.PricesDir); err != nil {
			return RunResult{}, fmt.Errorf("Run: %w", err)
		}
	}

	aggregator, err := eventservices.NewAggregator(src, prices, args.Aggregator)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	log.Infof("aggregating %s %s from %s", symbol, args.Period, src)

	start := time.Now()
	dataset, report, err := aggregator.Aggregate(ctx, symbol, args.Period)
	if err != nil {
		return RunResult{Report: report}, fmt.Errorf("Run: %w", err)
	}

	path, err := eventservices.SaveDataset(args.DataDir, dataset)
	if err != nil {
		return RunResult{Report: report}, fmt.Errorf("Run: %w", err)
	}

	log.WithFields(log.Fields{
		"symbol":  symbol,
		"period":  args.Period.String(),
		"records": dataset.Len(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Infof("saved dataset %s", path)

	return RunResult{
		DatasetPath: path,
		Records:     dataset.Len(),
		Report:      report,
		Quote:       latestQuote(ctx, prices, symbol),
	}, nil
}

func latestQuote(ctx context.Context, prices eventservices.UnderlyingPriceSource, symbol string) *eventmodels.PriceContext {
	quoter, ok := prices.(eventservices.QuoteSource)
	if !ok {
		return nil
	}

	quote, err := quoter.GetQuote(ctx, symbol)
	if err != nil {
		log.Warnf("no latest quote for %s: %v", symbol, err)
		return nil
	}

	return &quote
}
