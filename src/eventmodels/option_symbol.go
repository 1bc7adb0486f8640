package eventmodels

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OptionSymbolPrefix  = "O:"
	ExpirationLayout    = "060102"
	StrikeDigits        = 8
	StrikeScaleExponent = 3
	StrikeScale         = 1000
)

var (
	symbolSuffixLength = len(ExpirationLayout) + 1 + StrikeDigits
	maxScaledStrike    = int64(99999999)
)

type OptionSymbol string

func (s OptionSymbol) NoPrefix() string {
	if strings.HasPrefix(string(s), OptionSymbolPrefix) {
		return string(s)[len(OptionSymbolPrefix):]
	}

	return string(s)
}

// Decode anchors on the fixed width suffix (date, type, strike) and treats
// everything between the prefix and the suffix as the underlying.
func (s OptionSymbol) Decode() (OptionTicker, error) {
	raw := string(s)
	if !strings.HasPrefix(raw, OptionSymbolPrefix) {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: missing %q prefix: %w", raw, OptionSymbolPrefix, ErrMalformedTicker)
	}

	body := raw[len(OptionSymbolPrefix):]
	if len(body) <= symbolSuffixLength {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: too short: %w", raw, ErrMalformedTicker)
	}

	underlying := body[:len(body)-symbolSuffixLength]
	suffix := body[len(body)-symbolSuffixLength:]

	dateStr := suffix[:len(ExpirationLayout)]
	typeStr := suffix[len(ExpirationLayout) : len(ExpirationLayout)+1]
	strikeStr := suffix[len(ExpirationLayout)+1:]

	if !isDigits(dateStr) {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: expiration %q is not 6 digits: %w", raw, dateStr, ErrMalformedTicker)
	}

	expiration, err := time.Parse(ExpirationLayout, dateStr)
	if err != nil {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: invalid expiration %q: %w", raw, dateStr, ErrMalformedTicker)
	}

	optionType := OptionType(typeStr)
	if err := optionType.Validate(); err != nil {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: option type %q is neither C nor P: %w", raw, typeStr, ErrMalformedTicker)
	}

	if !isDigits(strikeStr) {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: strike %q is not %d digits: %w", raw, strikeStr, StrikeDigits, ErrMalformedTicker)
	}

	scaled, err := strconv.ParseInt(strikeStr, 10, 64)
	if err != nil {
		return OptionTicker{}, fmt.Errorf("OptionSymbol.Decode: %q: invalid strike %q: %w", raw, strikeStr, ErrMalformedTicker)
	}

	return OptionTicker{
		Underlying: underlying,
		Expiration: expiration.UTC(),
		OptionType: optionType,
		Strike:     decimal.New(scaled, -StrikeScaleExponent),
	}, nil
}

func (s OptionSymbol) Description() (string, error) {
	components, err := s.Decode()
	if err != nil {
		return "", fmt.Errorf("OptionSymbol.Description: failed to parse option symbol: %w", err)
	}

	// Format the expiration date
	expiration := components.Expiration.Format("Jan 2 2006")

	// Format the strike price
	strikePrice := components.Strike.StringFixed(2)

	// Format the option type
	optionType := "Call"
	if components.OptionType == Put {
		optionType = "Put"
	}

	// Construct the human-readable format
	formatted := fmt.Sprintf("%s %s $%s %s", components.Underlying, expiration, strikePrice, optionType)

	return formatted, nil
}

func NewOptionSymbol(option OptionTicker) (OptionSymbol, error) {
	if option.Underlying == "" {
		return "", fmt.Errorf("NewOptionSymbol: missing underlying")
	}

	if err := option.OptionType.Validate(); err != nil {
		return "", fmt.Errorf("NewOptionSymbol: %w", err)
	}

	if year := option.Expiration.Year(); year < 1969 || year > 2068 {
		return "", fmt.Errorf("NewOptionSymbol: expiration year %d cannot be packed into two digits", year)
	}

	if option.Strike.IsNegative() {
		return "", fmt.Errorf("NewOptionSymbol: negative strike %s", option.Strike)
	}

	scaled := option.Strike.Shift(StrikeScaleExponent)
	if !scaled.Equal(scaled.Truncate(0)) {
		return "", fmt.Errorf("NewOptionSymbol: strike %s has more than %d decimals", option.Strike, StrikeScaleExponent)
	}

	strike := scaled.IntPart()
	if strike > maxScaledStrike {
		return "", fmt.Errorf("NewOptionSymbol: strike %s does not fit in %d digits", option.Strike, StrikeDigits)
	}

	ticker := fmt.Sprintf("%s%s%s%s%0*d",
		OptionSymbolPrefix, option.Underlying, option.Expiration.Format(ExpirationLayout), string(option.OptionType), StrikeDigits, strike)

	return OptionSymbol(ticker), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
