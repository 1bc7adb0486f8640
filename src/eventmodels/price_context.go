package eventmodels

// PriceContext is the underlying's prices for one trading date.
type PriceContext struct {
	Open  float64
	Close float64
	High  float64
	Low   float64
	Spot  float64
}

// WithDefaults fills spot from close, and open/high/low from spot when a source
// only carries a closing price.
func (p PriceContext) WithDefaults() PriceContext {
	if p.Spot == 0 {
		p.Spot = p.Close
	}

	if p.Open == 0 {
		p.Open = p.Spot
	}

	if p.High == 0 {
		p.High = p.Spot
	}

	if p.Low == 0 {
		p.Low = p.Spot
	}

	if p.Close == 0 {
		p.Close = p.Spot
	}

	return p
}
