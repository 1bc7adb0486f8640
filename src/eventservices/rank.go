package eventservices

import (
	"math"
	"sort"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

// ReferenceVolatility stands in for implied volatility when a record has none.
const ReferenceVolatility = 0.30

// PopEstimate is a probability of profit estimate for the option seller:
// 1 - |delta| when delta is known, otherwise the normal probability of the
// underlying not travelling the OTM distance before expiration.
func PopEstimate(c *eventmodels.ContractDay) float64 {
	if c.Delta != nil {
		return 1 - math.Abs(*c.Delta)
	}

	sigma := ReferenceVolatility
	if c.ImpliedVolatility != nil && *c.ImpliedVolatility > 0 {
		sigma = *c.ImpliedVolatility
	}

	years := math.Max(float64(c.DaysToExpiry), 1) / 365.0
	return stdNormal.Cdf((c.OtmPct / 100) / (sigma * math.Sqrt(years)))
}

func Score(c *eventmodels.ContractDay, metric eventmodels.RankMetric) float64 {
	switch metric {
	case eventmodels.RankMetricPopEst:
		return PopEstimate(c)
	case eventmodels.RankMetricPremium:
		return c.Premium
	case eventmodels.RankMetricVolume:
		return float64(c.Volume)
	case eventmodels.RankMetricOtmPct:
		return c.OtmPct
	default:
		return c.PremiumYieldPct
	}
}

// rankCandidates orders by score descending, then packed ticker and trade
// date ascending, and assigns 1-based ranks.
func rankCandidates(candidates []eventmodels.Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}

		return candidates[i].ContractDay.Less(&candidates[j].ContractDay)
	})

	for i := range candidates {
		candidates[i].Rank = i + 1
	}
}
