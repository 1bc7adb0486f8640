package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	screenrun "github.com/jiaming2012/options-screener/src/cmd/screen/run"
	"github.com/jiaming2012/options-screener/src/screenapi"
	"github.com/jiaming2012/options-screener/src/telemetry"
	"github.com/jiaming2012/options-screener/src/utils"
)

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/screen_server/main.go --addr :8080 --data-dir data/datasets",
	Short: "Serve screening over saved datasets",
	Run: func(cmd *cobra.Command, args []string) {
		envFile, err := cmd.Flags().GetString("env-file")
		if err != nil {
			log.Fatalf("error getting env-file: %v", err)
		}

		if err := utils.InitEnvironmentVariables(envFile); err != nil {
			log.Fatalf("error loading environment variables: %v", err)
		}

		utils.SetLogLevel()

		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			log.Fatalf("error getting addr: %v", err)
		}

		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			log.Fatalf("error getting data-dir: %v", err)
		}

		presetsFile, err := cmd.Flags().GetString("presets-file")
		if err != nil {
			log.Fatalf("error getting presets-file: %v", err)
		}

		presets, err := screenrun.LoadPresets(presetsFile)
		if err != nil {
			log.Fatalf("failed to load presets: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		telemetry.AddLogHook()

		otelShutdown, err := telemetry.Setup(ctx, "options-screener-api")
		if err != nil {
			log.Fatalf("failed to setup otel sdk: %v", err)
		}

		router := mux.NewRouter()
		screenapi.NewHandler(dataDir, presets).SetupRoutes(router)

		srv := &http.Server{
			Handler:           otelhttp.NewHandler(router, "screen-server"),
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		go func() {
			log.Infof("listening on %s, serving datasets from %s", addr, dataDir)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		<-stop

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}

		cancel()

		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warnf("otel shutdown: %v", err)
		}

		log.Info("Main: gracefully stopped!")
	},
}

func main() {
	runCmd.PersistentFlags().String("addr", ":8080", "The address to listen on.")
	runCmd.PersistentFlags().String("data-dir", "data/datasets", "The directory datasets are saved in.")
	runCmd.PersistentFlags().String("presets-file", "src/screen_presets.yaml", "The screen presets file.")
	runCmd.PersistentFlags().String("env-file", "", "The .env file to load.")

	if err := runCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
