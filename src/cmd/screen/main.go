package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/options-screener/src/cmd/screen/run"
	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/telemetry"
	"github.com/jiaming2012/options-screener/src/utils"
)

func changedFloat64(cmd *cobra.Command, name string, target **float64) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}

	v, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		return fmt.Errorf("error getting %s: %w", name, err)
	}

	*target = &v
	return nil
}

func changedInt64(cmd *cobra.Command, name string, target **int64) error {
	if !cmd.Flags().Changed(name) {
		return nil
	}

	v, err := cmd.Flags().GetInt64(name)
	if err != nil {
		return fmt.Errorf("error getting %s: %w", name, err)
	}

	*target = &v
	return nil
}

// criteriaFromFlags starts from the preset, if any, and applies every flag
// set on the command line on top of it.
func criteriaFromFlags(cmd *cobra.Command) (eventmodels.ScreenCriteria, error) {
	var criteria eventmodels.ScreenCriteria

	presetName, err := cmd.Flags().GetString("preset")
	if err != nil {
		return criteria, fmt.Errorf("error getting preset: %w", err)
	}

	if presetName != "" {
		presetsFile, err := cmd.Flags().GetString("presets-file")
		if err != nil {
			return criteria, fmt.Errorf("error getting presets-file: %w", err)
		}

		presets, err := run.LoadPresets(presetsFile)
		if err != nil {
			return criteria, err
		}

		preset, err := presets.GetPreset(presetName)
		if err != nil {
			return criteria, err
		}

		if criteria, err = preset.ToCriteria(); err != nil {
			return criteria, err
		}
	}

	if cmd.Flags().Changed("expiration-days") {
		days, err := cmd.Flags().GetInt("expiration-days")
		if err != nil {
			return criteria, fmt.Errorf("error getting expiration-days: %w", err)
		}
		criteria.ExpirationDays = &days
	}

	floats := []struct {
		name   string
		target **float64
	}{
		{"min-otm-pct", &criteria.MinOtmPct},
		{"max-otm-pct", &criteria.MaxOtmPct},
		{"delta-lo", &criteria.DeltaLo},
		{"delta-hi", &criteria.DeltaHi},
		{"min-bid", &criteria.MinBid},
		{"max-spread-to-mid", &criteria.MaxSpreadToMid},
		{"min-premium-yield", &criteria.MinPremiumYield},
	}

	for _, f := range floats {
		if err := changedFloat64(cmd, f.name, f.target); err != nil {
			return criteria, err
		}
	}

	if err := changedInt64(cmd, "min-open-interest", &criteria.MinOpenInterest); err != nil {
		return criteria, err
	}

	if err := changedInt64(cmd, "min-volume", &criteria.MinVolume); err != nil {
		return criteria, err
	}

	if cmd.Flags().Changed("rank-metric") {
		metric, err := cmd.Flags().GetString("rank-metric")
		if err != nil {
			return criteria, fmt.Errorf("error getting rank-metric: %w", err)
		}
		criteria.RankMetric = eventmodels.RankMetric(metric)
	}

	if cmd.Flags().Changed("limit") {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return criteria, fmt.Errorf("error getting limit: %w", err)
		}
		criteria.Limit = limit
	}

	if cmd.Flags().Changed("option-type") {
		s, err := cmd.Flags().GetString("option-type")
		if err != nil {
			return criteria, fmt.Errorf("error getting option-type: %w", err)
		}

		optionType, err := eventmodels.NewOptionType(s)
		if err != nil {
			return criteria, fmt.Errorf("%v: %w", err, eventmodels.ErrInvalidCriteria)
		}
		criteria.OptionType = &optionType
	}

	return criteria, nil
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/screen/main.go --symbol TSLA --year 2024 --month 1 --expiration-days 7 --min-otm-pct 2",
	Short: "Screen an aggregated dataset and rank the matching contracts",
	Run: func(cmd *cobra.Command, args []string) {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			log.Fatalf("error getting env-file: %v", err)
		}

		if err := utils.InitEnvironmentVariables(envFile); err != nil {
			log.Fatalf("error loading environment variables: %v", err)
		}

		utils.SetLogLevel()

		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		year, err := cmd.Flags().GetInt("year")
		if err != nil {
			log.Fatalf("error getting year: %v", err)
		}

		month, err := cmd.Flags().GetInt("month")
		if err != nil {
			log.Fatalf("error getting month: %v", err)
		}

		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			log.Fatalf("error getting data-dir: %v", err)
		}

		datasetPath, err := cmd.Flags().GetString("dataset")
		if err != nil {
			log.Fatalf("error getting dataset: %v", err)
		}

		outputDir, err := cmd.Flags().GetString("output-dir")
		if err != nil {
			log.Fatalf("error getting output-dir: %v", err)
		}

		var period eventmodels.Period
		if datasetPath == "" {
			if period, err = eventmodels.NewPeriod(year, month); err != nil {
				log.Fatalf("invalid period: %v", err)
			}
		}

		criteria, err := criteriaFromFlags(cmd)
		if err != nil {
			log.Fatalf("invalid criteria: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		telemetry.AddLogHook()

		otelShutdown, err := telemetry.Setup(ctx, "options-screener-screen")
		if err != nil {
			log.Fatalf("failed to setup otel sdk: %v", err)
		}

		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				log.Warnf("otel shutdown: %v", err)
			}
		}()

		result, err := run.Run(ctx, run.RunArgs{
			Symbol:      symbol,
			Period:      period,
			DataDir:     dataDir,
			OutputDir:   outputDir,
			Criteria:    criteria,
			DatasetPath: datasetPath,
		})

		if err != nil {
			log.Fatalf("screen failed: %v", err)
		}

		fmt.Print(result.Summary)

		if result.CSVPath != "" {
			fmt.Printf("Candidates: %s\nSummary: %s\n", result.CSVPath, result.SummaryPath)
		}
	},
}

func main() {
	runCmd.PersistentFlags().String("symbol", "", "The underlying symbol, e.g. TSLA.")
	runCmd.PersistentFlags().Int("year", 0, "The year of the dataset.")
	runCmd.PersistentFlags().Int("month", 0, "The month of the dataset, 0 for a whole year dataset.")
	runCmd.PersistentFlags().Int("expiration-days", 0, "Only contracts with exactly this many days to expiry.")
	runCmd.PersistentFlags().Float64("min-otm-pct", 0, "Minimum percent out of the money.")
	runCmd.PersistentFlags().Float64("max-otm-pct", 0, "Maximum percent out of the money.")
	runCmd.PersistentFlags().Float64("delta-lo", 0, "Minimum delta.")
	runCmd.PersistentFlags().Float64("delta-hi", 0, "Maximum delta.")
	runCmd.PersistentFlags().Float64("min-bid", 0, "Minimum bid.")
	runCmd.PersistentFlags().Int64("min-open-interest", 0, "Minimum open interest.")
	runCmd.PersistentFlags().Int64("min-volume", 0, "Minimum daily volume.")
	runCmd.PersistentFlags().Float64("max-spread-to-mid", 0, "Maximum (ask - bid) / mid.")
	runCmd.PersistentFlags().Float64("min-premium-yield", 0, "Minimum premium yield, in percent of spot.")
	runCmd.PersistentFlags().String("rank-metric", string(eventmodels.DefaultRankMetric), "The ranking metric: premium_yield, pop_est, premium, volume or otm_pct.")
	runCmd.PersistentFlags().Int("limit", 0, "Keep only the top N candidates, 0 for all.")
	runCmd.PersistentFlags().String("option-type", "", "Only calls (C) or puts (P).")
	runCmd.PersistentFlags().String("preset", "", "A named preset from the presets file. Flags override its values.")
	runCmd.PersistentFlags().String("presets-file", "src/screen_presets.yaml", "The screen presets file.")
	runCmd.PersistentFlags().String("data-dir", "data/datasets", "The directory datasets are saved in.")
	runCmd.PersistentFlags().String("dataset", "", "Screen this dataset file instead of the newest one for the symbol and period.")
	runCmd.PersistentFlags().String("output-dir", "data/screens", "The directory the candidates and summary are written to.")
	runCmd.PersistentFlags().String("env-file", "", "The .env file to load.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
