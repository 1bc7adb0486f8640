package eventservices

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const summaryTopN = 20

func WriteCandidatesCSV(w io.Writer, candidates []eventmodels.Candidate) error {
	dtos := make([]*eventmodels.CandidateDTO, 0, len(candidates))
	for i := range candidates {
		dtos = append(dtos, candidates[i].ToDTO())
	}

	if len(dtos) == 0 {
		header := append(append([]string{}, eventmodels.ContractDayColumns...), "rank", "score", "spread_to_mid")
		_, err := io.WriteString(w, strings.Join(header, ",")+"\n")
		return err
	}

	if err := gocsv.Marshal(&dtos, w); err != nil {
		return fmt.Errorf("WriteCandidatesCSV: %w", err)
	}

	return nil
}

func describeCriteria(c eventmodels.ScreenCriteria) string {
	var parts []string
	addFloat := func(name string, v *float64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%g", name, *v))
		}
	}
	addInt := func(name string, v *int64) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", name, *v))
		}
	}

	if c.ExpirationDays != nil {
		parts = append(parts, fmt.Sprintf("expiration_days=%d", *c.ExpirationDays))
	}

	if c.OptionType != nil {
		parts = append(parts, fmt.Sprintf("option_type=%s", c.OptionType.String()))
	}

	addFloat("min_otm_pct", c.MinOtmPct)
	addFloat("max_otm_pct", c.MaxOtmPct)
	addFloat("delta_lo", c.DeltaLo)
	addFloat("delta_hi", c.DeltaHi)
	addFloat("min_bid", c.MinBid)
	addInt("min_open_interest", c.MinOpenInterest)
	addInt("min_volume", c.MinVolume)
	addFloat("max_spread_to_mid", c.MaxSpreadToMid)
	addFloat("min_premium_yield", c.MinPremiumYield)

	if c.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%d", c.Limit))
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, " ")
}

type summaryColumn struct {
	name  string
	value func(c *eventmodels.Candidate) interface{}
}

// summaryColumns are rendered with the display category of their name.
var summaryColumns = []summaryColumn{
	{"rank", func(c *eventmodels.Candidate) interface{} { return c.Rank }},
	{"ticker", func(c *eventmodels.Candidate) interface{} { return string(c.Symbol) }},
	{"date_only", func(c *eventmodels.Candidate) interface{} { return c.TradeDate.Format(eventmodels.DateLayout) }},
	{"strike", func(c *eventmodels.Candidate) interface{} { return c.Ticker.StrikeFloat() }},
	{"underlying_spot", func(c *eventmodels.Candidate) interface{} { return c.UnderlyingSpot }},
	{"otm_pct", func(c *eventmodels.Candidate) interface{} { return c.OtmPct }},
	{"premium", func(c *eventmodels.Candidate) interface{} { return c.Premium }},
	{"yield_pct", func(c *eventmodels.Candidate) interface{} { return c.PremiumYieldPct }},
	{"volume", func(c *eventmodels.Candidate) interface{} { return c.Volume }},
	{"score", func(c *eventmodels.Candidate) interface{} { return c.Score }},
}

func formatSummaryCell(p *message.Printer, category eventmodels.ColumnCategory, v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return p.Sprintf("%d", x)
	case int64:
		return p.Sprintf("%d", x)
	case float64:
		switch category {
		case eventmodels.ColumnCategoryStrike, eventmodels.ColumnCategoryPremium, eventmodels.ColumnCategoryPrice:
			return p.Sprintf("$%.2f", x)
		case eventmodels.ColumnCategoryYield:
			return p.Sprintf("%.3f%%", x)
		case eventmodels.ColumnCategoryOtm:
			return p.Sprintf("%.2f%%", x)
		default:
			return p.Sprintf("%.4f", x)
		}
	default:
		return fmt.Sprint(v)
	}
}

// SummarizeCandidates renders a human readable report of a screening run.
func SummarizeCandidates(criteria eventmodels.ScreenCriteria, dataset *eventmodels.Dataset, candidates []eventmodels.Candidate) string {
	out := &strings.Builder{}
	p := message.NewPrinter(language.English)

	symbol, period, size := "", "", 0
	if dataset != nil {
		symbol, period, size = dataset.Symbol, dataset.Period.String(), dataset.Len()
	}

	out.WriteString(p.Sprintf("Screen %s %s ranked by %s\n", symbol, period, criteria.Metric()))
	out.WriteString(p.Sprintf("Criteria: %s\n", describeCriteria(criteria)))
	out.WriteString(p.Sprintf("Records screened: %d\n", size))
	out.WriteString(p.Sprintf("Candidates: %d\n", len(candidates)))

	if len(candidates) == 0 {
		out.WriteString("No contracts matched the criteria.\n")
		return out.String()
	}

	yields := make([]float64, 0, len(candidates))
	otms := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		yields = append(yields, c.PremiumYieldPct)
		otms = append(otms, c.OtmPct)
	}

	meanYield, _ := stats.Mean(yields)
	medianYield, _ := stats.Median(yields)
	meanOtm, _ := stats.Mean(otms)
	medianOtm, _ := stats.Median(otms)

	out.WriteString(p.Sprintf("Premium yield %%: mean %.3f, median %.3f\n", meanYield, medianYield))
	out.WriteString(p.Sprintf("OTM %%: mean %.3f, median %.3f\n", meanOtm, medianOtm))

	headers := make([]string, 0, len(summaryColumns))
	for _, col := range summaryColumns {
		headers = append(headers, col.name)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(headers)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i := range candidates {
		if i >= summaryTopN {
			break
		}

		row := make([]string, 0, len(summaryColumns))
		for _, col := range summaryColumns {
			row = append(row, formatSummaryCell(p, eventmodels.ClassifyColumn(col.name), col.value(&candidates[i])))
		}

		table.Append(row)
	}

	table.Render()

	if len(candidates) > summaryTopN {
		out.WriteString(p.Sprintf("... %d more in the candidates file\n", len(candidates)-summaryTopN))
	}

	return out.String()
}

func screenResultBaseName(symbol string, criteria eventmodels.ScreenCriteria) string {
	dte := "all"
	if criteria.ExpirationDays != nil {
		dte = fmt.Sprintf("%d", *criteria.ExpirationDays)
	}

	return fmt.Sprintf("%s_dte%s_%s", strings.ToUpper(symbol), dte, criteria.Metric())
}

// SaveScreenResult writes the ranked candidates and the summary to outDir and
// returns both paths.
func SaveScreenResult(outDir string, criteria eventmodels.ScreenCriteria, dataset *eventmodels.Dataset, candidates []eventmodels.Candidate) (string, string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", "", fmt.Errorf("SaveScreenResult: failed to create %s: %w", outDir, err)
	}

	symbol := ""
	if dataset != nil {
		symbol = dataset.Symbol
	}

	base := filepath.Join(outDir, screenResultBaseName(symbol, criteria))
	csvPath := base + "_candidates.csv"
	summaryPath := base + "_summary.txt"

	f, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("SaveScreenResult: %w", err)
	}

	if err := WriteCandidatesCSV(f, candidates); err != nil {
		f.Close()
		return "", "", fmt.Errorf("SaveScreenResult: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("SaveScreenResult: %w", err)
	}

	summary := SummarizeCandidates(criteria, dataset, candidates)
	if err := os.WriteFile(summaryPath, []byte(summary), 0644); err != nil {
		return "", "", fmt.Errorf("SaveScreenResult: %w", err)
	}

	log.Infof("wrote %d candidates to %s", len(candidates), csvPath)

	return csvPath, summaryPath, nil
}
