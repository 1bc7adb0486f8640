package eventmodels

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

const (
	itmYes = "YES"
	itmNo  = "NO"
)

// ContractDayColumns is the persisted column order. The renderer classifies
// columns by these names, so they must not change.
var ContractDayColumns = []string{
	"ticker", "date_only", "expiration_date", "underlying_symbol", "option_type",
	"strike", "volume", "open_price", "close_price", "otm_pct", "ITM", "premium",
	"premium_yield_pct", "premium_low", "premium_yield_pct_low", "high_price", "low_price",
	"transactions", "window_start", "days_to_expiry", "time_remaining_category", "expiration_cycle",
	"underlying_open", "underlying_close", "underlying_high", "underlying_low", "underlying_spot",
	"bid", "ask", "open_interest", "delta", "implied_volatility", "probability_itm",
}

type ContractDayDTO struct {
	Ticker                string `csv:"ticker" json:"ticker"`
	DateOnly              string `csv:"date_only" json:"date_only"`
	ExpirationDate        string `csv:"expiration_date" json:"expiration_date"`
	UnderlyingSymbol      string `csv:"underlying_symbol" json:"underlying_symbol"`
	OptionType            string `csv:"option_type" json:"option_type"`
	Strike                string `csv:"strike" json:"strike"`
	Volume                string `csv:"volume" json:"volume"`
	OpenPrice             string `csv:"open_price" json:"open_price"`
	ClosePrice            string `csv:"close_price" json:"close_price"`
	OtmPct                string `csv:"otm_pct" json:"otm_pct"`
	ITM                   string `csv:"ITM" json:"itm"`
	Premium               string `csv:"premium" json:"premium"`
	PremiumYieldPct       string `csv:"premium_yield_pct" json:"premium_yield_pct"`
	PremiumLow            string `csv:"premium_low" json:"premium_low"`
	PremiumYieldPctLow    string `csv:"premium_yield_pct_low" json:"premium_yield_pct_low"`
	HighPrice             string `csv:"high_price" json:"high_price"`
	LowPrice              string `csv:"low_price" json:"low_price"`
	Transactions          string `csv:"transactions" json:"transactions"`
	WindowStart           string `csv:"window_start" json:"window_start"`
	DaysToExpiry          string `csv:"days_to_expiry" json:"days_to_expiry"`
	TimeRemainingCategory string `csv:"time_remaining_category" json:"time_remaining_category"`
	ExpirationCycle       string `csv:"expiration_cycle" json:"expiration_cycle"`
	UnderlyingOpen        string `csv:"underlying_open" json:"underlying_open"`
	UnderlyingClose       string `csv:"underlying_close" json:"underlying_close"`
	UnderlyingHigh        string `csv:"underlying_high" json:"underlying_high"`
	UnderlyingLow         string `csv:"underlying_low" json:"underlying_low"`
	UnderlyingSpot        string `csv:"underlying_spot" json:"underlying_spot"`
	Bid                   string `csv:"bid" json:"bid,omitempty"`
	Ask                   string `csv:"ask" json:"ask,omitempty"`
	OpenInterest          string `csv:"open_interest" json:"open_interest,omitempty"`
	Delta                 string `csv:"delta" json:"delta,omitempty"`
	ImpliedVolatility     string `csv:"implied_volatility" json:"implied_volatility,omitempty"`
	ProbabilityITM        string `csv:"probability_itm" json:"probability_itm,omitempty"`
}

func (c *ContractDay) ToDTO() *ContractDayDTO {
	itm := itmNo
	if c.IsITM {
		itm = itmYes
	}

	return &ContractDayDTO{
		Ticker:                string(c.Symbol),
		DateOnly:              c.TradeDate.Format(DateLayout),
		ExpirationDate:        c.Ticker.Expiration.Format(DateLayout),
		UnderlyingSymbol:      c.Ticker.Underlying,
		OptionType:            string(c.Ticker.OptionType),
		Strike:                c.Ticker.Strike.String(),
		Volume:                strconv.FormatInt(c.Volume, 10),
		OpenPrice:             formatFloat(c.Open),
		ClosePrice:            formatFloat(c.Close),
		OtmPct:                formatFloat(c.OtmPct),
		ITM:                   itm,
		Premium:               formatFloat(c.Premium),
		PremiumYieldPct:       formatFloat(c.PremiumYieldPct),
		PremiumLow:            formatFloat(c.PremiumLow),
		PremiumYieldPctLow:    formatFloat(c.PremiumYieldPctLow),
		HighPrice:             formatFloat(c.High),
		LowPrice:              formatFloat(c.Low),
		Transactions:          strconv.FormatInt(c.Transactions, 10),
		WindowStart:           strconv.FormatInt(c.WindowStart, 10),
		DaysToExpiry:          strconv.Itoa(c.DaysToExpiry),
		TimeRemainingCategory: string(c.TimeRemainingCategory),
		ExpirationCycle:       string(c.ExpirationCycle),
		UnderlyingOpen:        formatFloat(c.UnderlyingOpen),
		UnderlyingClose:       formatFloat(c.UnderlyingClose),
		UnderlyingHigh:        formatFloat(c.UnderlyingHigh),
		UnderlyingLow:         formatFloat(c.UnderlyingLow),
		UnderlyingSpot:        formatFloat(c.UnderlyingSpot),
		Bid:                   formatOptionalFloat(c.Bid),
		Ask:                   formatOptionalFloat(c.Ask),
		OpenInterest:          formatOptionalInt(c.OpenInterest),
		Delta:                 formatOptionalFloat(c.Delta),
		ImpliedVolatility:     formatOptionalFloat(c.ImpliedVolatility),
		ProbabilityITM:        formatOptionalFloat(c.ProbabilityITM),
	}
}

// ToModel restores a persisted record. The ITM flag is recomputed from otm_pct
// so the two columns can never disagree.
func (dto *ContractDayDTO) ToModel() (*ContractDay, error) {
	symbol := OptionSymbol(strings.TrimSpace(dto.Ticker))
	ticker, err := symbol.Decode()
	if err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	tradeDate, err := time.Parse(DateLayout, dto.DateOnly)
	if err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: date_only: %w", err)
	}

	c := &ContractDay{
		Symbol:                symbol,
		Ticker:                ticker,
		TradeDate:             tradeDate,
		TimeRemainingCategory: TimeRemainingCategory(dto.TimeRemainingCategory),
		ExpirationCycle:       ExpirationCycle(dto.ExpirationCycle),
	}

	floats := []struct {
		name  string
		value string
		dest  *float64
	}{
		{"open_price", dto.OpenPrice, &c.Open},
		{"close_price", dto.ClosePrice, &c.Close},
		{"high_price", dto.HighPrice, &c.High},
		{"low_price", dto.LowPrice, &c.Low},
		{"otm_pct", dto.OtmPct, &c.OtmPct},
		{"premium", dto.Premium, &c.Premium},
		{"premium_yield_pct", dto.PremiumYieldPct, &c.PremiumYieldPct},
		{"premium_low", dto.PremiumLow, &c.PremiumLow},
		{"premium_yield_pct_low", dto.PremiumYieldPctLow, &c.PremiumYieldPctLow},
		{"underlying_open", dto.UnderlyingOpen, &c.UnderlyingOpen},
		{"underlying_close", dto.UnderlyingClose, &c.UnderlyingClose},
		{"underlying_high", dto.UnderlyingHigh, &c.UnderlyingHigh},
		{"underlying_low", dto.UnderlyingLow, &c.UnderlyingLow},
		{"underlying_spot", dto.UnderlyingSpot, &c.UnderlyingSpot},
	}

	for _, f := range floats {
		if *f.dest, err = parseFloat(f.name, f.value); err != nil {
			return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
		}
	}

	if c.Volume, err = parseCount("volume", dto.Volume); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.Transactions, err = parseCount("transactions", dto.Transactions); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.WindowStart, err = parseCount("window_start", dto.WindowStart); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	days, err := parseCount("days_to_expiry", dto.DaysToExpiry)
	if err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}
	c.DaysToExpiry = int(days)

	if c.Bid, err = parseOptionalFloat("bid", dto.Bid); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.Ask, err = parseOptionalFloat("ask", dto.Ask); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.OpenInterest, err = parseOptionalCount("open_interest", dto.OpenInterest); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.Delta, err = parseOptionalFloat("delta", dto.Delta); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.ImpliedVolatility, err = parseOptionalFloat("implied_volatility", dto.ImpliedVolatility); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if c.ProbabilityITM, err = parseOptionalFloat("probability_itm", dto.ProbabilityITM); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	if err := c.TimeRemainingCategory.Validate(); err != nil {
		return nil, fmt.Errorf("ContractDayDTO.ToModel: %w", err)
	}

	c.IsITM = c.OtmPct < 0

	return c, nil
}
