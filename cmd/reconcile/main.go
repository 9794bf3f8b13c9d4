package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"chapterhall/internal/application"
	"chapterhall/internal/config"
	"chapterhall/internal/infrastructure/database"
)

// The reconciliation job re-runs the completion validator over meetings
// past their grace window. It applies the same pure validation the live
// completion path uses, so a meeting whose data landed late still gets
// the right terminal status.
func main() {
	interval := flag.Duration("interval", 0, "re-run every interval; 0 runs once and exits")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("job", "reconcile").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()

	reconciler := application.NewReconciler(
		database.NewMeetingRepository(pool),
		database.NewAttendanceRepository(pool),
		database.NewTimeLogRepository(pool),
		logger,
		cfg.ReconcileGrace,
	)

	runOnce := func() {
		corrected, err := reconciler.Run(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("reconciliation pass failed")
			return
		}
		logger.Info().Int("corrected", corrected).Msg("reconciliation pass done")
	}

	runOnce()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for range ticker.C {
		runOnce()
	}
}
