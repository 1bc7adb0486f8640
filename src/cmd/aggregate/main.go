package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/options-screener/src/cmd/aggregate/run"
	"github.com/jiaming2012/options-screener/src/eventmodels"
	"github.com/jiaming2012/options-screener/src/eventservices"
	"github.com/jiaming2012/options-screener/src/telemetry"
	"github.com/jiaming2012/options-screener/src/utils"
)

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/aggregate/main.go --symbol TSLA --year 2024 --month 1",
	Short: "Aggregate option day files into a per-symbol dataset",
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

		period, err := eventmodels.NewPeriod(year, month)
		if err != nil {
			log.Fatalf("invalid period: %v", err)
		}

		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			log.Fatalf("error getting data-dir: %v", err)
		}

		pricesDir, err := cmd.Flags().GetString("prices-dir")
		if err != nil {
			log.Fatalf("error getting prices-dir: %v", err)
		}

		concurrency, err := cmd.Flags().GetInt("concurrency")
		if err != nil {
			log.Fatalf("error getting concurrency: %v", err)
		}

		premiumPolicy, err := cmd.Flags().GetString("premium-policy")
		if err != nil {
			log.Fatalf("error getting premium-policy: %v", err)
		}

		deriveGreeks, err := cmd.Flags().GetBool("derive-greeks")
		if err != nil {
			log.Fatalf("error getting derive-greeks: %v", err)
		}

		riskFreeRate, err := cmd.Flags().GetFloat64("risk-free-rate")
		if err != nil {
			log.Fatalf("error getting risk-free-rate: %v", err)
		}

		priceTimeout, err := cmd.Flags().GetDuration("price-timeout")
		if err != nil {
			log.Fatalf("error getting price-timeout: %v", err)
		}

		source, err := run.DescriptorFromEnv()
		if err != nil {
			log.Fatalf("error configuring file source: %v", err)
		}

		normalizer := eventservices.DefaultNormalizerConfig()
		normalizer.PremiumPolicy = eventmodels.PremiumPolicy(premiumPolicy)
		normalizer.DeriveGreeks = deriveGreeks
		normalizer.RiskFreeRate = riskFreeRate

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		telemetry.AddLogHook()

		otelShutdown, err := telemetry.Setup(ctx, "options-screener-aggregate")
		if err != nil {
			log.Fatalf("failed to setup otel sdk: %v", err)
		}

		defer func() {
			if err := otelShutdown(context.Background()); err != nil {
				log.Warnf("otel shutdown: %v", err)
			}
		}()

		result, err := run.Run(ctx, run.RunArgs{
			Symbol:        symbol,
			Period:        period,
			DataDir:       dataDir,
			PricesDir:     pricesDir,
			PolygonAPIKey: utils.GetEnvOrDefault("POLYGON_API_KEY", ""),
			Source:        source,
			Aggregator: eventservices.AggregatorConfig{
				Concurrency:       concurrency,
				PriceFetchTimeout: priceTimeout,
				Normalizer:        normalizer,
			},
		})

		if result.Report != nil {
			fmt.Println(result.Report.String())
		}

		if err != nil {
			if errors.Is(err, eventmodels.ErrNoFilesFound) {
				log.Errorf("no day files found for %s: %v", period, err)
			}

			log.Fatalf("aggregation failed: %v", err)
		}

		fmt.Printf("Dataset: %s (%d records)\n", result.DatasetPath, result.Records)

		if result.Quote != nil {
			fmt.Printf("Latest %s spot: $%.2f\n", strings.ToUpper(symbol), result.Quote.Spot)
		}
	},
}

func main() {
	runCmd.PersistentFlags().String("symbol", "", "The underlying symbol, e.g. TSLA.")
	runCmd.PersistentFlags().Int("year", 0, "The year to aggregate.")
	runCmd.PersistentFlags().Int("month", 0, "The month to aggregate, 0 for the whole year.")
	runCmd.PersistentFlags().String("data-dir", "data/datasets", "The directory datasets are saved to.")
	runCmd.PersistentFlags().String("prices-dir", "data/prices", "The directory of HistoricalData_<SYM>.csv files, used without POLYGON_API_KEY.")
	runCmd.PersistentFlags().Int("concurrency", eventservices.DefaultAggregatorConcurrency, "The number of day files processed in parallel.")
	runCmd.PersistentFlags().String("premium-policy", string(eventmodels.DefaultPremiumPolicy), "The premium price: midpoint or close.")
	runCmd.PersistentFlags().Bool("derive-greeks", false, "Derive implied volatility, delta and probability ITM from the premium.")
	runCmd.PersistentFlags().Float64("risk-free-rate", 0, "The annual risk-free rate used when deriving greeks.")
	runCmd.PersistentFlags().Duration("price-timeout", eventservices.DefaultPriceFetchTimeout, "The timeout for fetching underlying prices.")
	runCmd.PersistentFlags().String("env-file", "", "The .env file to load.")

	runCmd.MarkPersistentFlagRequired("symbol")
	runCmd.MarkPersistentFlagRequired("year")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
