package eventmodels

import "fmt"

// PremiumPolicy selects which of the day's prices is used as the premium.
type PremiumPolicy string

const (
	PremiumPolicyClose    PremiumPolicy = "close"
	PremiumPolicyMidpoint PremiumPolicy = "midpoint"
)

const DefaultPremiumPolicy = PremiumPolicyMidpoint

func (p PremiumPolicy) Validate() error {
	if p != PremiumPolicyClose && p != PremiumPolicyMidpoint {
		return fmt.Errorf("PremiumPolicy: Validate: invalid premium policy: %s", p)
	}

	return nil
}

func (p PremiumPolicy) Premium(close, high, low float64) float64 {
	switch p {
	case PremiumPolicyClose:
		return close
	default:
		return (high + low) / 2.0
	}
}
