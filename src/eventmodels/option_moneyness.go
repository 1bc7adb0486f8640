package eventmodels

type OptionMoneyness string

const (
	OptionMoneynessIntheMoney    OptionMoneyness = "in_the_money"
	OptionMoneynessOutOfTheMoney OptionMoneyness = "out_of_the_money"
	OptionMoneynessAtTheMoney    OptionMoneyness = "at_the_money"
)

// NewOptionMoneyness buckets an otm percentage. Positive is out of the money.
func NewOptionMoneyness(otmPct float64) OptionMoneyness {
	switch {
	case otmPct < 0:
		return OptionMoneynessIntheMoney
	case otmPct > 0:
		return OptionMoneynessOutOfTheMoney
	default:
		return OptionMoneynessAtTheMoney
	}
}
