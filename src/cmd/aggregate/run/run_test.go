package run

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
	"github.com/jiaming2012/options-screener/src/filesource"
)

func writeDayFile(t *testing.T, root, rel string, date time.Time, tickers ...string) {
	t.Helper()

	lines := []string{"ticker,volume,open,close,high,low,window_start,transactions"}
	for _, ticker := range tickers {
		lines = append(lines, fmt.Sprintf("%s,10,1.0,1.2,1.4,0.9,%d,3", ticker, date.Add(5*time.Hour).UnixNano()))
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(strings.Join(lines, "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))
}

// dailyOnly hides the GetQuote method of the wrapped source.
type dailyOnly struct {
	src eventservices.UnderlyingPriceSource
}

func (d dailyOnly) FetchDailyPrices(ctx context.Context, symbol string, period eventmodels.Period) (map[string]eventmodels.PriceContext, error) {
	return d.src.FetchDailyPrices(ctx, symbol, period)
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	dataDir := t.TempDir()
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	writeDayFile(t, root, "2024/01/2024-01-10.csv.gz", date,
		"O:SPY240119P00460000",
		"O:SPY240119C00480000",
		"O:QQQ240119C00400000",
	)

	args := RunArgs{
		Symbol:  "spy",
		Period:  eventmodels.Period{Year: 2024, Month: 1},
		DataDir: dataDir,
		Source:  filesource.Descriptor{Kind: filesource.KindLocal, LocalRoot: root},
		Prices:  eventservices.StaticPriceSource{"2024-01-10": {Close: 470}},
	}

	result, err := Run(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Records)
	assert.Equal(t, int64(1), result.Report.Rows.Ignored)
	assert.FileExists(t, result.DatasetPath)
	require.NotNil(t, result.Quote)
	assert.Equal(t, 470.0, result.Quote.Spot)

	ds, err := eventservices.LoadLatestDataset(dataDir, "SPY", args.Period)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	t.Run("a second run saves a new version", func(t *testing.T) {
		second, err := Run(context.Background(), args)
		require.NoError(t, err)
		assert.NotEqual(t, result.DatasetPath, second.DatasetPath)
	})

	t.Run("price source without quotes", func(t *testing.T) {
		noQuotes := args
		noQuotes.Prices = dailyOnly{args.Prices}

		res, err := Run(context.Background(), noQuotes)
		require.NoError(t, err)
		assert.Nil(t, res.Quote)
	})

	t.Run("no files for the period", func(t *testing.T) {
		missing := args
		missing.Period = eventmodels.Period{Year: 2019, Month: 6}

		_, err := Run(context.Background(), missing)
		assert.True(t, errors.Is(err, eventmodels.ErrNoFilesFound))
	})

	t.Run("missing symbol", func(t *testing.T) {
		noSymbol := args
		noSymbol.Symbol = " "

		_, err := Run(context.Background(), noSymbol)
		assert.Error(t, err)
	})
}

func TestDescriptorFromEnv(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		t.Setenv("USE_LOCAL_FILES", "true")
		t.Setenv("LOCAL_DATA_DIR", "/tmp/day_aggs")

		d, err := DescriptorFromEnv()
		require.NoError(t, err)
		assert.Equal(t, filesource.KindLocal, d.Kind)
		assert.Equal(t, "/tmp/day_aggs", d.LocalRoot)
	})

	t.Run("s3", func(t *testing.T) {
		t.Setenv("USE_LOCAL_FILES", "false")
		t.Setenv("MASSIVE_S3_ACCESS_KEY", "access")
		t.Setenv("MASSIVE_API_KEY", "secret")
		t.Setenv("MASSIVE_S3_BUCKET", "flatfiles")
		t.Setenv("MASSIVE_S3_ENDPOINT", "https://files.example.com")
		t.Setenv("MASSIVE_S3_REGION", "")
		t.Setenv("MASSIVE_S3_PREFIX", "")

		d, err := DescriptorFromEnv()
		require.NoError(t, err)
		assert.Equal(t, filesource.KindS3, d.Kind)
		assert.Equal(t, "flatfiles", d.S3.Bucket)
		assert.Equal(t, DefaultS3Region, d.S3.Region)
		assert.Equal(t, DefaultS3Prefix, d.S3.Prefix)
		assert.Equal(t, "secret", d.S3.SecretKey)
	})

	t.Run("s3 without credentials", func(t *testing.T) {
		t.Setenv("USE_LOCAL_FILES", "")
		t.Setenv("MASSIVE_S3_ACCESS_KEY", "")

		_, err := DescriptorFromEnv()
		assert.Error(t, err)
	})
}

func TestNewPriceSource(t *testing.T) {
	src, err := NewPriceSource("", "data/prices")
	require.NoError(t, err)
	assert.IsType(t, &eventservices.HistoricalCSVPriceSource{}, src)

	_, err = NewPriceSource("", "")
	assert.Error(t, err)
}
