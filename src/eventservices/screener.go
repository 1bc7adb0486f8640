package eventservices

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

func atLeast(v, min *float64) bool {
	return min == nil || *v >= *min
}

// Passes reports whether c satisfies every configured bound. A record that
// lacks a field some bound needs is excluded.
func Passes(c *eventmodels.ContractDay, criteria eventmodels.ScreenCriteria) bool {
	if criteria.OptionType != nil && c.Ticker.OptionType != *criteria.OptionType {
		return false
	}

	if criteria.ExpirationDays != nil && c.DaysToExpiry != *criteria.ExpirationDays {
		return false
	}

	if criteria.MinOtmPct != nil && c.OtmPct < *criteria.MinOtmPct {
		return false
	}

	if criteria.MaxOtmPct != nil && c.OtmPct > *criteria.MaxOtmPct {
		return false
	}

	if criteria.DeltaLo != nil || criteria.DeltaHi != nil {
		if c.Delta == nil {
			return false
		}

		if criteria.DeltaLo != nil && *c.Delta < *criteria.DeltaLo {
			return false
		}

		if criteria.DeltaHi != nil && *c.Delta > *criteria.DeltaHi {
			return false
		}
	}

	if criteria.MinBid != nil {
		if c.Bid == nil || !atLeast(c.Bid, criteria.MinBid) {
			return false
		}
	}

	if criteria.MinOpenInterest != nil {
		if c.OpenInterest == nil || *c.OpenInterest < *criteria.MinOpenInterest {
			return false
		}
	}

	if criteria.MinVolume != nil && c.Volume < *criteria.MinVolume {
		return false
	}

	if criteria.MaxSpreadToMid != nil {
		spread, ok := c.SpreadToMid()
		if !ok || spread > *criteria.MaxSpreadToMid {
			return false
		}
	}

	if criteria.MinPremiumYield != nil && c.PremiumYieldPct < *criteria.MinPremiumYield {
		return false
	}

	return true
}

// Screen filters and ranks a dataset. It does not modify the dataset and an
// empty result is not an error.
func Screen(dataset *eventmodels.Dataset, criteria eventmodels.ScreenCriteria) ([]eventmodels.Candidate, error) {
	if err := criteria.Validate(); err != nil {
		return nil, fmt.Errorf("Screen: %w", err)
	}

	candidates := []eventmodels.Candidate{}
	if dataset == nil {
		return candidates, nil
	}

	metric := criteria.Metric()
	for i := 0; i < dataset.Len(); i++ {
		c := dataset.At(i)
		if !Passes(&c, criteria) {
			continue
		}

		candidates = append(candidates, eventmodels.Candidate{
			ContractDay: c,
			Score:       Score(&c, metric),
		})
	}

	rankCandidates(candidates)

	if criteria.Limit > 0 && len(candidates) > criteria.Limit {
		candidates = candidates[:criteria.Limit]
	}

	return candidates, nil
}

type Screener struct {
	tracer trace.Tracer
}

func NewScreener() *Screener {
	return &Screener{tracer: otel.Tracer("Screener")}
}

func (s *Screener) Screen(ctx context.Context, dataset *eventmodels.Dataset, criteria eventmodels.ScreenCriteria) ([]eventmodels.Candidate, error) {
	_, span := s.tracer.Start(ctx, "Screener.Screen")
	defer span.End()

	candidates, err := Screen(dataset, criteria)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	size := 0
	if dataset != nil {
		size = dataset.Len()
		span.SetAttributes(attribute.String("symbol", dataset.Symbol))
	}

	span.SetAttributes(attribute.Int("records", size), attribute.Int("candidates", len(candidates)), attribute.String("rank_metric", string(criteria.Metric())))

	log.WithContext(ctx).Infof("screened %d records: %d candidates ranked by %s", size, len(candidates), criteria.Metric())

	return candidates, nil
}
