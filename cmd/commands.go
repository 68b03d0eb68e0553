package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/maxaizer/jobscout/internal/app"
	"github.com/maxaizer/jobscout/internal/config"
	"github.com/maxaizer/jobscout/internal/logger"
	"github.com/maxaizer/jobscout/internal/metrics"
	"github.com/maxaizer/jobscout/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "jobscout",
	Short:         "jobscout collects remote job postings and scores them against your preferences",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server with periodic ingestion",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return a.Serve(ctx)
		})
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion cycle and print its result",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return printJSON(a.Ingestion.RunCycle(ctx))
		})
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score fresh postings for one user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		userID, err := cmd.Flags().GetString("user")
		if err != nil {
			return err
		}

		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			prefs, profile, err := services.LoadCandidate(ctx, a.Candidates, userID)
			if err != nil {
				return err
			}

			result, err := a.Matching.Run(ctx, userID, prefs, profile)
			if err != nil {
				return err
			}

			a.Bus.WaitAsync()
			return printJSON(result)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $CONFIG_PATH or ./configs/config.yaml)")

	matchCmd.Flags().String("user", "", "user id to run matching for")
	_ = matchCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd, ingestCmd, matchCmd)
}

func withApp(parent context.Context, run func(ctx context.Context, a *app.App) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger.Setup(ctx, cfg.Logger)
	defer logger.Cleanup()

	metrics.Register()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Errorf("can't start: %v", err)
		return err
	}
	defer a.Close()

	if err = run(ctx, a); err != nil {
		log.Error(err)
		return err
	}
	log.Info("Services stopped.")
	return nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("can't print result: %w", err)
	}
	return nil
}
