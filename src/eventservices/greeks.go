package eventservices

import (
	"fmt"
	"math"

	"github.com/chobie/go-gaussian"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const (
	impliedVolMaxIterations = 100
	impliedVolTolerance     = 1e-8
	minYearsToExpiry        = 1.0 / 365.0
)

var stdNormal = gaussian.NewGaussian(0, 1)

// BlackScholesInput prices a European option. YearsToExpiry is floored at one
// day so same day expirations stay defined.
type BlackScholesInput struct {
	OptionType    eventmodels.OptionType
	Spot          float64
	Strike        float64
	YearsToExpiry float64
	RiskFreeRate  float64
}

func (in BlackScholesInput) years() float64 {
	return math.Max(in.YearsToExpiry, minYearsToExpiry)
}

func (in BlackScholesInput) d1d2(volatility float64) (float64, float64) {
	t := in.years()
	d1 := (math.Log(in.Spot/in.Strike) + (in.RiskFreeRate+volatility*volatility/2)*t) / (volatility * math.Sqrt(t))
	return d1, d1 - volatility*math.Sqrt(t)
}

func (in BlackScholesInput) validate() error {
	if in.Spot <= 0 || in.Strike <= 0 {
		return fmt.Errorf("BlackScholesInput: spot %v and strike %v must be positive", in.Spot, in.Strike)
	}

	return in.OptionType.Validate()
}

func (in BlackScholesInput) sign() float64 {
	if in.OptionType == eventmodels.Put {
		return -1
	}

	return 1
}

func (in BlackScholesInput) Price(volatility float64) float64 {
	d1, d2 := in.d1d2(volatility)
	cp := in.sign()
	discount := math.Exp(-in.RiskFreeRate * in.years())
	return cp*in.Spot*stdNormal.Cdf(cp*d1) - cp*in.Strike*discount*stdNormal.Cdf(cp*d2)
}

func (in BlackScholesInput) Delta(volatility float64) float64 {
	d1, _ := in.d1d2(volatility)
	if in.OptionType == eventmodels.Put {
		return stdNormal.Cdf(d1) - 1
	}

	return stdNormal.Cdf(d1)
}

// ProbabilityITM is the risk neutral probability of finishing in the money.
func (in BlackScholesInput) ProbabilityITM(volatility float64) float64 {
	_, d2 := in.d1d2(volatility)
	return stdNormal.Cdf(in.sign() * d2)
}

// ImpliedVolatility solves Price(v) = premium with Newton-Raphson. The start is
// the Brenner-Subrahmanyam approximation, raised to the Manaster-Koehler point
// for options far from the money where the former lands on a flat vega.
func (in BlackScholesInput) ImpliedVolatility(premium float64) (float64, error) {
	if err := in.validate(); err != nil {
		return 0, fmt.Errorf("ImpliedVolatility: %w", err)
	}

	t := in.years()
	discount := math.Exp(-in.RiskFreeRate * t)
	intrinsic := math.Max(in.sign()*(in.Spot-in.Strike*discount), 0)
	upper := in.Spot
	if in.OptionType == eventmodels.Put {
		upper = in.Strike * discount
	}

	if premium <= intrinsic || premium >= upper {
		return 0, fmt.Errorf("ImpliedVolatility: premium %v outside no-arbitrage bounds (%v, %v)", premium, intrinsic, upper)
	}

	v := math.Sqrt(2*math.Pi/t) * premium / in.Spot
	v = math.Max(v, math.Sqrt(2*math.Abs(math.Log(in.Spot/in.Strike)+in.RiskFreeRate*t)/t))
	for i := 0; i < impliedVolMaxIterations; i++ {
		d1, _ := in.d1d2(v)
		vega := in.Spot * stdNormal.Pdf(d1) * math.Sqrt(t)
		diff := in.Price(v) - premium
		if math.Abs(diff) < impliedVolTolerance {
			return v, nil
		}

		if vega < 1e-12 {
			break
		}

		next := v - diff/vega
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}

		// overshoot below zero: halve instead
		if next <= 0 {
			next = v / 2
		}

		v = next
	}

	return 0, fmt.Errorf("ImpliedVolatility: did not converge for premium %v", premium)
}
