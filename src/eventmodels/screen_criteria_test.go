package eventmodels

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScreenCriteriaValidate(t *testing.T) {
	t.Run("empty criteria is valid", func(t *testing.T) {
		c := ScreenCriteria{}
		assert.NoError(t, c.Validate())
		assert.Equal(t, DefaultRankMetric, c.Metric())
	})

	invalid := []struct {
		name     string
		criteria ScreenCriteria
	}{
		{"otm range inverted", ScreenCriteria{MinOtmPct: Float64(5), MaxOtmPct: Float64(1)}},
		{"delta range inverted", ScreenCriteria{DeltaLo: Float64(0.4), DeltaHi: Float64(0.1)}},
		{"negative min bid", ScreenCriteria{MinBid: Float64(-0.01)}},
		{"negative open interest", ScreenCriteria{MinOpenInterest: Int64(-1)}},
		{"negative volume", ScreenCriteria{MinVolume: Int64(-1)}},
		{"negative spread", ScreenCriteria{MaxSpreadToMid: Float64(-1)}},
		{"negative expiration days", ScreenCriteria{ExpirationDays: Int(-1)}},
		{"unknown metric", ScreenCriteria{RankMetric: "gamma"}},
		{"negative limit", ScreenCriteria{Limit: -1}},
		{"NaN min otm pct", ScreenCriteria{MinOtmPct: Float64(math.NaN())}},
		{"NaN max otm pct", ScreenCriteria{MaxOtmPct: Float64(math.NaN())}},
		{"NaN delta lo", ScreenCriteria{DeltaLo: Float64(math.NaN())}},
		{"NaN delta hi", ScreenCriteria{DeltaHi: Float64(math.NaN()), DeltaLo: Float64(0.1)}},
		{"NaN min bid", ScreenCriteria{MinBid: Float64(math.NaN())}},
		{"NaN max spread", ScreenCriteria{MaxSpreadToMid: Float64(math.NaN())}},
		{"NaN min premium yield", ScreenCriteria{MinPremiumYield: Float64(math.NaN())}},
	}

	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.criteria.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCriteria))
		})
	}

	t.Run("equal bounds are valid", func(t *testing.T) {
		c := ScreenCriteria{MinOtmPct: Float64(2), MaxOtmPct: Float64(2), DeltaLo: Float64(0.2), DeltaHi: Float64(0.2)}
		assert.NoError(t, c.Validate())
	})
}

const presetsYAML = `
presets:
  - name: zero-dte-covered-call
    description: same day calls a few percent out of the money
    expirationDays: 0
    minOtmPct: 1
    maxOtmPct: 5
    optionType: call
    rankMetric: premium_yield
    limit: 25
  - name: weekly-puts
    expirationDays: 7
    deltaLo: -0.3
    deltaHi: -0.1
    minOpenInterest: 100
    optionType: P
    rankMetric: pop_est
`

func TestScreenPresets(t *testing.T) {
	t.Run("parse and convert", func(t *testing.T) {
		cfg, err := ParseScreenPresets(strings.NewReader(presetsYAML))
		require.NoError(t, err)
		assert.Equal(t, []string{"zero-dte-covered-call", "weekly-puts"}, cfg.Names())

		preset, err := cfg.GetPreset("Zero-DTE-Covered-Call")
		require.NoError(t, err)

		criteria, err := preset.ToCriteria()
		require.NoError(t, err)

		require.NotNil(t, criteria.ExpirationDays)
		assert.Equal(t, 0, *criteria.ExpirationDays)
		assert.Equal(t, 1.0, *criteria.MinOtmPct)
		assert.Equal(t, 5.0, *criteria.MaxOtmPct)
		require.NotNil(t, criteria.OptionType)
		assert.Equal(t, Call, *criteria.OptionType)
		assert.Equal(t, RankMetricPremiumYield, criteria.RankMetric)
		assert.Equal(t, 25, criteria.Limit)
		assert.Nil(t, criteria.MinBid)
	})

	t.Run("put preset", func(t *testing.T) {
		cfg, err := ParseScreenPresets(strings.NewReader(presetsYAML))
		require.NoError(t, err)

		preset, err := cfg.GetPreset("weekly-puts")
		require.NoError(t, err)

		criteria, err := preset.ToCriteria()
		require.NoError(t, err)
		assert.Equal(t, Put, *criteria.OptionType)
		assert.Equal(t, int64(100), *criteria.MinOpenInterest)
		assert.Equal(t, RankMetricPopEst, criteria.Metric())
	})

	t.Run("unknown preset", func(t *testing.T) {
		cfg, err := ParseScreenPresets(strings.NewReader(presetsYAML))
		require.NoError(t, err)

		_, err = cfg.GetPreset("missing")
		assert.Error(t, err)
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := ParseScreenPresets(strings.NewReader("presets:\n  - name: a\n  - name: A\n"))
		assert.Error(t, err)
	})

	t.Run("invalid preset criteria", func(t *testing.T) {
		preset := ScreenPresetYAML{Name: "bad", MinOtmPct: Float64(3), MaxOtmPct: Float64(1)}
		_, err := preset.ToCriteria()
		assert.True(t, errors.Is(err, ErrInvalidCriteria))
	})
}
