package screenapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
)

const testPresets = `
presets:
  - name: weekly-puts
    expirationDays: 7
    optionType: P
    minOtmPct: 1
`

func newContractDay(t *testing.T, symbol string, otmPct, yield float64, dte int) eventmodels.ContractDay {
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
		Volume:                100,
		UnderlyingSpot:        470,
		UnderlyingClose:       470,
		OtmPct:                otmPct,
		IsITM:                 otmPct < 0,
		Premium:               1,
		PremiumYieldPct:       yield,
		PremiumLow:            0.8,
		PremiumYieldPctLow:    yield * 0.8,
		DaysToExpiry:          dte,
		TimeRemainingCategory: eventmodels.TimeRemainingWeekly,
		ExpirationCycle:       eventmodels.ExpirationCycleWeekly,
	}
}

func setupHandler(t *testing.T) *mux.Router {
	t.Helper()

	dir := t.TempDir()
	period, err := eventmodels.NewPeriod(2024, 1)
	require.NoError(t, err)

	ds := eventmodels.NewDataset("SPY", period, []eventmodels.ContractDay{
		newContractDay(t, "O:SPY240119P00460000", 2.1, 0.3, 7),
		newContractDay(t, "O:SPY240119P00450000", 4.3, 0.1, 7),
		newContractDay(t, "O:SPY240119C00480000", 2.1, 0.5, 7),
		newContractDay(t, "O:SPY240216P00460000", 2.1, 0.9, 35),
	})

	_, err = eventservices.SaveDataset(dir, ds)
	require.NoError(t, err)

	presets, err := eventmodels.ParseScreenPresets(strings.NewReader(testPresets))
	require.NoError(t, err)

	router := mux.NewRouter()
	NewHandler(dir, presets).SetupRoutes(router)
	return router
}

func doGet(router *mux.Router, url string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScreenHandler(t *testing.T) {
	router := setupHandler(t)

	t.Run("ranks matches by premium yield", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=spy&year=2024&month=1&expiration-days=7&option-type=P")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ScreenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

		assert.Equal(t, "SPY", resp.Symbol)
		assert.Equal(t, "2024-01", resp.Period)
		require.Equal(t, 2, resp.Count)
		require.Len(t, resp.Candidates, 2)
		assert.Equal(t, "O:SPY240119P00460000", resp.Candidates[0].Ticker)
		assert.Equal(t, 1, resp.Candidates[0].Rank)
		assert.Equal(t, "O:SPY240119P00450000", resp.Candidates[1].Ticker)
		assert.Equal(t, 2, resp.Candidates[1].Rank)
	})

	t.Run("limit", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&limit=1")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ScreenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "O:SPY240216P00460000", resp.Candidates[0].Ticker)
	})

	t.Run("preset with override", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&preset=weekly-puts&min-otm-pct=3")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ScreenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, "O:SPY240119P00450000", resp.Candidates[0].Ticker)
	})

	t.Run("no matches is not an error", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&min-otm-pct=50")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ScreenResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Count)
		assert.Empty(t, resp.Candidates)
	})

	t.Run("inverted bounds", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&min-otm-pct=5&max-otm-pct=1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_criteria", resp.Type)
	})

	t.Run("missing symbol", func(t *testing.T) {
		rec := doGet(router, "/screen?year=2024")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown rank metric", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&rank-metric=gamma")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown parameter", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&foo=bar")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("dataset not found", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=QQQ&year=2024&month=1")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "dataset_not_found", resp.Type)
	})

	t.Run("unknown preset", func(t *testing.T) {
		rec := doGet(router, "/screen?symbol=SPY&year=2024&month=1&preset=nope")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPresetsHandler(t *testing.T) {
	router := setupHandler(t)

	rec := doGet(router, "/presets")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PresetsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"weekly-puts"}, resp.Presets)
}
