package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/padel-insights/market-cli/internal/collect"
	"github.com/padel-insights/market-cli/pkg/places"
)

var collectConcurrency int

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Discover padel facilities in every roster city",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Google.Key == "" {
			return eris.New("google places key is required (PADEL_GOOGLE_KEY)")
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		client := places.NewClient(cfg.Google.Key,
			places.WithBaseURL(cfg.Google.BaseURL),
			places.WithRateLimit(cfg.Google.RequestsPerSec),
		)

		concurrency := collectConcurrency
		if concurrency == 0 {
			concurrency = cfg.Collect.MaxConcurrentCities
		}
		cacheTTL := time.Duration(cfg.Collect.CacheTTLHours) * time.Hour

		collector := collect.New(client, env.Store, env.Roster, concurrency, cacheTTL)
		facilities, err := collector.Run(ctx)
		if err != nil {
			return err
		}

		zap.L().Info("collect complete", zap.Int("facilities", len(facilities)))
		return nil
	},
}

func init() {
	collectCmd.Flags().IntVar(&collectConcurrency, "concurrency", 0, "concurrent city searches (default from config)")
	rootCmd.AddCommand(collectCmd)
}
