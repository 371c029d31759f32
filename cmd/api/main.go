package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"propmerge/adapters/api"
	"propmerge/internal/config"
	"propmerge/internal/logging"
	"propmerge/internal/merge"
	"propmerge/internal/report"
)

func main() {
	logger := logging.FromEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	merger := merge.NewMerger(merge.Options{
		FSAUniverseSize: cfg.Merge.FSAUniverseSize,
		Risk: merge.RiskThresholds{
			PriceVolatilityCV: cfg.Merge.PriceVolatilityCV,
			SlowMarketDays:    cfg.Merge.SlowMarketDays,
			MinCompleteness:   cfg.Merge.MinCompleteness,
		},
	}, logging.Component(logger, "merge"))

	server := api.NewServer(merger, report.NewRenderer(), logging.Component(logger, "api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.Server); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
