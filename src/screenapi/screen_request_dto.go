package screenapi

import (
	"fmt"
	"strings"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

// ScreenRequestDTO is the query string of GET /screen. Parameter names match
// the screen command's flags.
type ScreenRequestDTO struct {
	Symbol          string   `schema:"symbol" validate:"required,max=12"`
	Year            int      `schema:"year" validate:"required,gte=1970,lte=2100"`
	Month           int      `schema:"month" validate:"gte=0,lte=12"`
	Preset          string   `schema:"preset"`
	ExpirationDays  *int     `schema:"expiration-days" validate:"omitempty,gte=0"`
	MinOtmPct       *float64 `schema:"min-otm-pct"`
	MaxOtmPct       *float64 `schema:"max-otm-pct"`
	DeltaLo         *float64 `schema:"delta-lo" validate:"omitempty,gte=-1,lte=1"`
	DeltaHi         *float64 `schema:"delta-hi" validate:"omitempty,gte=-1,lte=1"`
	MinBid          *float64 `schema:"min-bid" validate:"omitempty,gte=0"`
	MinOpenInterest *int64   `schema:"min-open-interest" validate:"omitempty,gte=0"`
	MinVolume       *int64   `schema:"min-volume" validate:"omitempty,gte=0"`
	MaxSpreadToMid  *float64 `schema:"max-spread-to-mid" validate:"omitempty,gte=0"`
	MinPremiumYield *float64 `schema:"min-premium-yield"`
	RankMetric      string   `schema:"rank-metric" validate:"omitempty,oneof=premium_yield pop_est premium volume otm_pct"`
	Limit           int      `schema:"limit" validate:"gte=0"`
	OptionType      string   `schema:"option-type" validate:"omitempty,oneof=C P c p call put"`
}

func (dto *ScreenRequestDTO) Period() (eventmodels.Period, error) {
	return eventmodels.NewPeriod(dto.Year, dto.Month)
}

// ToCriteria applies the request on top of base, usually a preset. Only the
// parameters present in the request override base.
func (dto *ScreenRequestDTO) ToCriteria(base eventmodels.ScreenCriteria) (eventmodels.ScreenCriteria, error) {
	c := base

	if dto.ExpirationDays != nil {
		c.ExpirationDays = dto.ExpirationDays
	}

	if dto.MinOtmPct != nil {
		c.MinOtmPct = dto.MinOtmPct
	}

	if dto.MaxOtmPct != nil {
		c.MaxOtmPct = dto.MaxOtmPct
	}

	if dto.DeltaLo != nil {
		c.DeltaLo = dto.DeltaLo
	}

	if dto.DeltaHi != nil {
		c.DeltaHi = dto.DeltaHi
	}

	if dto.MinBid != nil {
		c.MinBid = dto.MinBid
	}

	if dto.MinOpenInterest != nil {
		c.MinOpenInterest = dto.MinOpenInterest
	}

	if dto.MinVolume != nil {
		c.MinVolume = dto.MinVolume
	}

	if dto.MaxSpreadToMid != nil {
		c.MaxSpreadToMid = dto.MaxSpreadToMid
	}

	if dto.MinPremiumYield != nil {
		c.MinPremiumYield = dto.MinPremiumYield
	}

	if dto.RankMetric != "" {
		c.RankMetric = eventmodels.RankMetric(dto.RankMetric)
	}

	if dto.Limit > 0 {
		c.Limit = dto.Limit
	}

	if dto.OptionType != "" {
		optionType, err := eventmodels.NewOptionType(dto.OptionType)
		if err != nil {
			return eventmodels.ScreenCriteria{}, fmt.Errorf("ScreenRequestDTO.ToCriteria: %v: %w", err, eventmodels.ErrInvalidCriteria)
		}
		c.OptionType = &optionType
	}

	if err := c.Validate(); err != nil {
		return eventmodels.ScreenCriteria{}, fmt.Errorf("ScreenRequestDTO.ToCriteria: %w", err)
	}

	return c, nil
}

func (dto *ScreenRequestDTO) NormalizedSymbol() string {
	return strings.ToUpper(strings.TrimSpace(dto.Symbol))
}
