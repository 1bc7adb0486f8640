package filesource

import (
	"context"
	"fmt"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/options-screener/src/eventmodels"
)

const dayFileGlob = "*.csv.gz"

// maxFallbackDepth bounds the final, unstructured search.
const maxFallbackDepth = 4

// Discover finds the day files of a period. It tries the canonical
// YYYY/MM layout first, then any two level layout filtered by name, and
// finally any path that contains the year, or the YYYY-MM stamp when a
// month is set.
func Discover(ctx context.Context, src FileSource, period eventmodels.Period) ([]string, error) {
	year := fmt.Sprintf("%04d", period.Year)
	needle := periodNeedle(period)

	primary := path.Join(year, "*", dayFileGlob)
	if period.HasMonth() {
		primary = path.Join(year, fmt.Sprintf("%02d", period.Month), dayFileGlob)
	}

	files, err := src.List(ctx, primary)
	if err != nil {
		return nil, fmt.Errorf("Discover: %s: %w", primary, err)
	}

	if len(files) > 0 {
		return files, nil
	}

	log.WithContext(ctx).Warnf("Discover: no files at %s in %s, trying */*/%s", primary, src, dayFileGlob)

	files, err = src.List(ctx, path.Join("*", "*", dayFileGlob))
	if err != nil {
		return nil, fmt.Errorf("Discover: fallback listing: %w", err)
	}

	if files = filterByPeriod(files, period); len(files) > 0 {
		return files, nil
	}

	log.WithContext(ctx).Warnf("Discover: no %s files in %s, searching any path containing %s", period, src, needle)

	pattern := "*"
	for depth := 1; depth <= maxFallbackDepth; depth++ {
		candidates, err := src.List(ctx, pattern)
		if err != nil {
			return nil, fmt.Errorf("Discover: fallback listing: %w", err)
		}

		for _, c := range candidates {
			if strings.Contains(c, needle) {
				files = append(files, c)
			}
		}

		pattern = path.Join(pattern, "*")
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("Discover: %s in %s: %w", period, src, eventmodels.ErrNoFilesFound)
	}

	return files, nil
}

// filterByPeriod keeps files whose name carries the year, and the
// YYYY-MM stamp when a month is set.
func filterByPeriod(files []string, period eventmodels.Period) []string {
	needle := periodNeedle(period)

	var out []string
	for _, f := range files {
		if strings.Contains(path.Base(f), needle) {
			out = append(out, f)
		}
	}

	return out
}

func periodNeedle(period eventmodels.Period) string {
	if period.HasMonth() {
		return fmt.Sprintf("%04d-%02d", period.Year, period.Month)
	}

	return fmt.Sprintf("%04d", period.Year)
}
