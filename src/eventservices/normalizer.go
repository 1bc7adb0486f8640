package eventservices

import (
	"fmt"
	"math"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

type NormalizerConfig struct {
	PremiumPolicy       eventmodels.PremiumPolicy
	WeeklyThresholdDays int
	DeriveGreeks        bool
	RiskFreeRate        float64
}

func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		PremiumPolicy:       eventmodels.DefaultPremiumPolicy,
		WeeklyThresholdDays: eventmodels.WeeklyThresholdDays,
	}
}

// Normalizer turns one parsed vendor row into a ContractDay. It is stateless
// and safe for concurrent use.
type Normalizer struct {
	cfg NormalizerConfig
}

func NewNormalizer(cfg NormalizerConfig) (*Normalizer, error) {
	if cfg.PremiumPolicy == "" {
		cfg.PremiumPolicy = eventmodels.DefaultPremiumPolicy
	}

	if err := cfg.PremiumPolicy.Validate(); err != nil {
		return nil, fmt.Errorf("NewNormalizer: %w", err)
	}

	if cfg.WeeklyThresholdDays < 0 {
		return nil, fmt.Errorf("NewNormalizer: negative weekly threshold %d", cfg.WeeklyThresholdDays)
	}

	return &Normalizer{cfg: cfg}, nil
}

func (n *Normalizer) Config() NormalizerConfig {
	return n.cfg
}

func (n *Normalizer) Normalize(raw eventmodels.RawQuoteRow, ticker eventmodels.OptionTicker, underlying eventmodels.PriceContext) (*eventmodels.ContractDay, error) {
	symbol, err := ticker.Encode()
	if err != nil {
		return nil, fmt.Errorf("Normalizer.Normalize: %v: %w", err, eventmodels.ErrMalformedTicker)
	}

	underlying = underlying.WithDefaults()
	spot := underlying.Spot
	if spot <= 0 {
		return nil, fmt.Errorf("Normalizer.Normalize: %s: missing underlying spot: %w", symbol, eventmodels.ErrIncompleteRecord)
	}

	if raw.Open < 0 || raw.Close < 0 || raw.High < 0 || raw.Low < 0 {
		return nil, fmt.Errorf("Normalizer.Normalize: %s: negative price: %w", symbol, eventmodels.ErrIncompleteRecord)
	}

	tradeDate := raw.TradeDate()
	daysToExpiry := int(math.Round(ticker.Expiration.Sub(tradeDate).Hours() / 24))
	if daysToExpiry < 0 {
		return nil, fmt.Errorf("Normalizer.Normalize: %s traded on %s after expiration: %w", symbol, tradeDate.Format(eventmodels.DateLayout), eventmodels.ErrIncompleteRecord)
	}

	strike := ticker.StrikeFloat()
	otmPct := (strike - spot) / spot * 100
	if ticker.OptionType == eventmodels.Put {
		otmPct = (spot - strike) / spot * 100
	}

	premium := n.cfg.PremiumPolicy.Premium(raw.Close, raw.High, raw.Low)
	premiumLow := raw.Low

	c := &eventmodels.ContractDay{
		Symbol:                symbol,
		Ticker:                ticker,
		TradeDate:             tradeDate,
		Open:                  raw.Open,
		Close:                 raw.Close,
		High:                  raw.High,
		Low:                   raw.Low,
		Volume:                raw.Volume,
		Transactions:          raw.Transactions,
		WindowStart:           raw.WindowStart,
		Bid:                   raw.Bid,
		Ask:                   raw.Ask,
		OpenInterest:          raw.OpenInterest,
		Delta:                 raw.Delta,
		ImpliedVolatility:     raw.ImpliedVolatility,
		UnderlyingOpen:        underlying.Open,
		UnderlyingClose:       underlying.Close,
		UnderlyingHigh:        underlying.High,
		UnderlyingLow:         underlying.Low,
		UnderlyingSpot:        spot,
		OtmPct:                otmPct,
		IsITM:                 otmPct < 0,
		Premium:               premium,
		PremiumYieldPct:       premium / spot * 100,
		PremiumLow:            premiumLow,
		PremiumYieldPctLow:    premiumLow / spot * 100,
		DaysToExpiry:          daysToExpiry,
		TimeRemainingCategory: eventmodels.NewTimeRemainingCategory(daysToExpiry, n.cfg.WeeklyThresholdDays),
		ExpirationCycle:       eventmodels.NewExpirationCycle(ticker.Expiration),
	}

	if n.cfg.DeriveGreeks {
		n.deriveGreeks(c)
	}

	return c, nil
}

// deriveGreeks fills delta and probability ITM from the implied volatility,
// solving for it from the premium when the row has none. A failed solve
// leaves the fields unset.
func (n *Normalizer) deriveGreeks(c *eventmodels.ContractDay) {
	in := BlackScholesInput{
		OptionType:    c.Ticker.OptionType,
		Spot:          c.UnderlyingSpot,
		Strike:        c.Ticker.StrikeFloat(),
		YearsToExpiry: float64(c.DaysToExpiry) / 365.0,
		RiskFreeRate:  n.cfg.RiskFreeRate,
	}

	if in.validate() != nil {
		return
	}

	if c.ImpliedVolatility == nil {
		iv, err := in.ImpliedVolatility(c.Premium)
		if err != nil {
			return
		}
		c.ImpliedVolatility = eventmodels.Float64(iv)
	}

	iv := *c.ImpliedVolatility
	if iv <= 0 {
		return
	}

	if c.Delta == nil {
		c.Delta = eventmodels.Float64(in.Delta(iv))
	}

	c.ProbabilityITM = eventmodels.Float64(in.ProbabilityITM(iv))
}
