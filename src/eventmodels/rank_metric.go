package eventmodels

import "fmt"

type RankMetric string

const (
	RankMetricPremiumYield RankMetric = "premium_yield"
	RankMetricPopEst       RankMetric = "pop_est"
	RankMetricPremium      RankMetric = "premium"
	RankMetricVolume       RankMetric = "volume"
	RankMetricOtmPct       RankMetric = "otm_pct"
)

const DefaultRankMetric = RankMetricPremiumYield

var RankMetrics = []RankMetric{
	RankMetricPremiumYield,
	RankMetricPopEst,
	RankMetricPremium,
	RankMetricVolume,
	RankMetricOtmPct,
}

func (m RankMetric) Validate() error {
	for _, known := range RankMetrics {
		if m == known {
			return nil
		}
	}

	return fmt.Errorf("RankMetric: Validate: unknown rank metric: %q", m)
}
