package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
)

type RunArgs struct {
	Symbol    string
	Period    eventmodels.Period
	DataDir   string
	OutputDir string
	Criteria  eventmodels.ScreenCriteria

	// DatasetPath screens one saved dataset instead of the newest in DataDir.
	DatasetPath string
}

type RunResult struct {
	Dataset     *eventmodels.Dataset
	Candidates  []eventmodels.Candidate
	CSVPath     string
	SummaryPath string
	Summary     string
}

// LoadPresets reads the presets file. A missing file yields no presets.
func LoadPresets(path string) (*eventmodels.ScreenPresetsConfigYAML, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debugf("LoadPresets: %s not found", path)
			return &eventmodels.ScreenPresetsConfigYAML{}, nil
		}

		return nil, fmt.Errorf("LoadPresets: %w", err)
	}
	defer f.Close()

	presets, err := eventmodels.ParseScreenPresets(f)
	if err != nil {
		return nil, fmt.Errorf("LoadPresets: %s: %w", path, err)
	}

	return presets, nil
}

func loadDataset(args RunArgs) (*eventmodels.Dataset, error) {
	if args.DatasetPath != "" {
		return eventservices.LoadDataset(args.DatasetPath)
	}

	symbol := strings.ToUpper(strings.TrimSpace(args.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("missing symbol")
	}

	return eventservices.LoadLatestDataset(args.DataDir, symbol, args.Period)
}

func Run(ctx context.Context, args RunArgs) (RunResult, error) {
	if err := args.Criteria.Validate(); err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	dataset, err := loadDataset(args)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	candidates, err := eventservices.NewScreener().Screen(ctx, dataset, args.Criteria)
	if err != nil {
		return RunResult{}, fmt.Errorf("Run: %w", err)
	}

	result := RunResult{
		Dataset:    dataset,
		Candidates: candidates,
		Summary:    eventservices.SummarizeCandidates(args.Criteria, dataset, candidates),
	}

	if args.OutputDir == "" {
		return result, nil
	}

	if result.CSVPath, result.SummaryPath, err = eventservices.SaveScreenResult(args.OutputDir, args.Criteria, dataset, candidates); err != nil {
		return result, fmt.Errorf("Run: %w", err)
	}

	return result, nil
}
