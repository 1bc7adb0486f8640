package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
)

func newContractDay(t *testing.T, symbol string, otmPct, yield float64) eventmodels.ContractDay {
	t.Helper()

	ticker, err := eventmodels.DecodeOptionTicker(symbol)
	require.NoError(t, err)

	return eventmodels.ContractDay{
		Symbol:                eventmodels.OptionSymbol(symbol),
		Ticker:                ticker,
		TradeDate:             time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		Open:                  1,
		Close:                 1,
		High:                  1.2,
		Low:                   0.8,
		Volume:                50,
		UnderlyingSpot:        470,
		UnderlyingClose:       470,
		OtmPct:                otmPct,
		IsITM:                 otmPct < 0,
		Premium:               1,
		PremiumYieldPct:       yield,
		PremiumLow:            0.8,
		PremiumYieldPctLow:    yield * 0.8,
		DaysToExpiry:          7,
		TimeRemainingCategory: eventmodels.TimeRemainingWeekly,
		ExpirationCycle:       eventmodels.ExpirationCycleWeekly,
	}
}

func saveTestDataset(t *testing.T, dir string) eventmodels.Period {
	t.Helper()

	period := eventmodels.Period{Year: 2024, Month: 1}
	ds := eventmodels.NewDataset("SPY", period, []eventmodels.ContractDay{
		newContractDay(t, "O:SPY240119P00460000", 2.1, 0.2),
		newContractDay(t, "O:SPY240119P00450000", 4.3, 0.1),
		newContractDay(t, "O:SPY240119C00480000", -1.0, 0.4),
	})

	_, err := eventservices.SaveDataset(dir, ds)
	require.NoError(t, err)

	return period
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	period := saveTestDataset(t, dataDir)

	t.Run("writes ranked candidates", func(t *testing.T) {
		outDir := t.TempDir()

		result, err := Run(ctx, RunArgs{
			Symbol:    "spy",
			Period:    period,
			DataDir:   dataDir,
			OutputDir: outDir,
			Criteria:  eventmodels.ScreenCriteria{MinOtmPct: eventmodels.Float64(0)},
		})
		require.NoError(t, err)

		require.Len(t, result.Candidates, 2)
		assert.Equal(t, eventmodels.OptionSymbol("O:SPY240119P00460000"), result.Candidates[0].Symbol)
		assert.Equal(t, filepath.Join(outDir, "SPY_dteall_premium_yield_candidates.csv"), result.CSVPath)
		assert.FileExists(t, result.CSVPath)
		assert.FileExists(t, result.SummaryPath)
		assert.Contains(t, result.Summary, "Candidates: 2")
	})

	t.Run("zero matches is a successful run", func(t *testing.T) {
		outDir := t.TempDir()

		result, err := Run(ctx, RunArgs{
			Symbol:    "SPY",
			Period:    period,
			DataDir:   dataDir,
			OutputDir: outDir,
			Criteria:  eventmodels.ScreenCriteria{MinOtmPct: eventmodels.Float64(50)},
		})
		require.NoError(t, err)

		assert.Empty(t, result.Candidates)
		assert.FileExists(t, result.CSVPath)
		assert.Contains(t, result.Summary, "No contracts matched")
	})

	t.Run("without an output dir nothing is written", func(t *testing.T) {
		result, err := Run(ctx, RunArgs{Symbol: "SPY", Period: period, DataDir: dataDir})
		require.NoError(t, err)

		assert.Len(t, result.Candidates, 3)
		assert.Empty(t, result.CSVPath)
	})

	t.Run("invalid criteria", func(t *testing.T) {
		_, err := Run(ctx, RunArgs{
			Symbol:  "SPY",
			Period:  period,
			DataDir: dataDir,
			Criteria: eventmodels.ScreenCriteria{
				MinOtmPct: eventmodels.Float64(5),
				MaxOtmPct: eventmodels.Float64(1),
			},
		})
		assert.True(t, errors.Is(err, eventmodels.ErrInvalidCriteria))
	})

	t.Run("missing dataset", func(t *testing.T) {
		_, err := Run(ctx, RunArgs{Symbol: "QQQ", Period: period, DataDir: dataDir})
		assert.True(t, errors.Is(err, eventmodels.ErrDatasetNotFound))
	})
}

func TestLoadPresets(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		presets, err := LoadPresets(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Empty(t, presets.Presets)
	})

	t.Run("bundled presets", func(t *testing.T) {
		presets, err := LoadPresets(filepath.Join("..", "..", "..", "screen_presets.yaml"))
		require.NoError(t, err)
		require.NotEmpty(t, presets.Presets)

		for _, p := range presets.Presets {
			_, err := p.ToCriteria()
			assert.NoError(t, err, p.Name)
		}

		zeroDTE, err := presets.GetPreset("0dte-covered-calls")
		require.NoError(t, err)

		criteria, err := zeroDTE.ToCriteria()
		require.NoError(t, err)
		require.NotNil(t, criteria.ExpirationDays)
		assert.Equal(t, 0, *criteria.ExpirationDays)
		require.NotNil(t, criteria.OptionType)
		assert.Equal(t, eventmodels.Call, *criteria.OptionType)
	})

	t.Run("duplicate names", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "presets.yaml")
		require.NoError(t, os.WriteFile(path, []byte("presets:\n  - name: a\n  - name: A\n"), 0644))

		_, err := LoadPresets(path)
		assert.Error(t, err)
	})
}
