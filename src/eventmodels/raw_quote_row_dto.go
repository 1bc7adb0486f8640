package eventmodels

import (
	"fmt"
	"strings"
)

// RawQuoteRowDTO mirrors the day_aggs_v1 flat file header. The quote side
// columns are only present in some exports.
type RawQuoteRowDTO struct {
	Ticker            string `csv:"ticker"`
	Volume            string `csv:"volume"`
	Open              string `csv:"open"`
	Close             string `csv:"close"`
	High              string `csv:"high"`
	Low               string `csv:"low"`
	WindowStart       string `csv:"window_start"`
	Transactions      string `csv:"transactions"`
	Bid               string `csv:"bid"`
	Ask               string `csv:"ask"`
	OpenInterest      string `csv:"open_interest"`
	Delta             string `csv:"delta"`
	ImpliedVolatility string `csv:"implied_volatility"`
}

func (dto *RawQuoteRowDTO) ToModel() (*RawQuoteRow, error) {
	ticker := strings.TrimSpace(dto.Ticker)
	if ticker == "" {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: missing ticker")
	}

	var err error
	row := &RawQuoteRow{Ticker: OptionSymbol(ticker)}

	if row.Volume, err = parseCount("volume", dto.Volume); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.Open, err = parseFloat("open", dto.Open); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.Close, err = parseFloat("close", dto.Close); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.High, err = parseFloat("high", dto.High); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.Low, err = parseFloat("low", dto.Low); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.WindowStart, err = parseCount("window_start", dto.WindowStart); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if strings.TrimSpace(dto.Transactions) != "" {
		if row.Transactions, err = parseCount("transactions", dto.Transactions); err != nil {
			return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
		}
	}

	if row.Bid, err = parseOptionalFloat("bid", dto.Bid); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.Ask, err = parseOptionalFloat("ask", dto.Ask); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.OpenInterest, err = parseOptionalCount("open_interest", dto.OpenInterest); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.Delta, err = parseOptionalFloat("delta", dto.Delta); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	if row.ImpliedVolatility, err = parseOptionalFloat("implied_volatility", dto.ImpliedVolatility); err != nil {
		return nil, fmt.Errorf("RawQuoteRowDTO.ToModel: %w", err)
	}

	return row, nil
}
