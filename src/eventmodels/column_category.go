package eventmodels

import "strings"

// ColumnCategory is a display hint for the table renderer.
type ColumnCategory string

const (
	ColumnCategoryStrike  ColumnCategory = "strike"
	ColumnCategoryPremium ColumnCategory = "premium"
	ColumnCategoryVolume  ColumnCategory = "volume"
	ColumnCategoryPrice   ColumnCategory = "price"
	ColumnCategoryYield   ColumnCategory = "yield"
	ColumnCategoryOtm     ColumnCategory = "otm"
	ColumnCategoryNone    ColumnCategory = "none"
)

// Order matters: premium_yield_pct is a premium column, and price columns are
// listed explicitly so open_interest is not a price.
var columnCategoryRules = []struct {
	category ColumnCategory
	needles  []string
}{
	{ColumnCategoryStrike, []string{"strike"}},
	{ColumnCategoryPremium, []string{"premium"}},
	{ColumnCategoryVolume, []string{"volume"}},
	{ColumnCategoryPrice, []string{
		"open_price", "close_price", "high_price", "low_price",
		"underlying_open", "underlying_close", "underlying_high", "underlying_low", "underlying_spot",
	}},
	{ColumnCategoryYield, []string{"yield"}},
	{ColumnCategoryOtm, []string{"otm"}},
}

func ClassifyColumn(header string) ColumnCategory {
	h := strings.ToLower(strings.TrimSpace(header))
	for _, rule := range columnCategoryRules {
		for _, needle := range rule.needles {
			if strings.Contains(h, needle) {
				return rule.category
			}
		}
	}

	return ColumnCategoryNone
}

func ClassifyColumns(headers []string) map[string]ColumnCategory {
	out := make(map[string]ColumnCategory, len(headers))
	for _, h := range headers {
		out[h] = ClassifyColumn(h)
	}

	return out
}
