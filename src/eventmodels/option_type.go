package eventmodels

import "fmt"

type OptionType string

func (o OptionType) Validate() error {
	if o != Call && o != Put {
		return fmt.Errorf("OptionType: Validate: invalid option type: %s", o)
	}

	return nil
}

func (o OptionType) String() string {
	switch o {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return string(o)
	}
}

// NewOptionType accepts the packed form (C/P) as well as call/put.
func NewOptionType(s string) (OptionType, error) {
	switch s {
	case "C", "c", "call", "CALL", "Call":
		return Call, nil
	case "P", "p", "put", "PUT", "Put":
		return Put, nil
	default:
		return "", fmt.Errorf("NewOptionType: invalid option type: %s", s)
	}
}

const (
	Call OptionType = "C"
	Put  OptionType = "P"
)
