package eventmodels

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func Float64(v float64) *float64 {
	return &v
}

func Int64(v int64) *int64 {
	return &v
}

func Int(v int) *int {
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}

	return formatFloat(*v)
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatInt(*v, 10)
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: not a finite number: %q", field, s)
	}

	return v, nil
}

func parseOptionalFloat(field, s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	v, err := parseFloat(field, s)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

// parseCount accepts integral values written either as 12 or 12.0.
func parseCount(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%s: negative count %d", field, n)
		}
		return n, nil
	}

	f, err := parseFloat(field, s)
	if err != nil {
		return 0, err
	}

	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s: not a non-negative integer: %q", field, s)
	}

	return int64(f), nil
}

func parseOptionalCount(field, s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	n, err := parseCount(field, s)
	if err != nil {
		return nil, err
	}

	return &n, nil
}
