package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/edqm-seeder/internal/backfill"
	"github.com/angelmondragon/edqm-seeder/internal/watermark"
	"github.com/angelmondragon/edqm-seeder/pkg/config"
	"github.com/angelmondragon/edqm-seeder/pkg/logger"
	"github.com/angelmondragon/edqm-seeder/pkg/metrics"
	"github.com/angelmondragon/edqm-seeder/pkg/storage/gcs"
)

// exitPartial signals that every day persisted locally but at least one
// landing upload was skipped.
const exitPartial = 2

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "backfill"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "backfill",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var sink backfill.LandingSink
	if cfg.GCS.BucketName != "" {
		client, err := gcs.NewClient(ctx, cfg.GCS, logg)
		requireResource(ctx, logg, "gcs client", err)
		sink = client
	} else {
		logg.Warn(ctx, "no landing bucket configured, datasets stay local")
	}

	backfillMetrics := metrics.NewBackfillMetrics(prometheus.DefaultRegisterer)
	watermarks := watermark.NewStore(filepath.Join(cfg.Backfill.DataDir, "watermark.txt"))

	service, err := backfill.NewService(backfill.ServiceParams{
		Config:     cfg,
		Logger:     logg,
		Metrics:    backfillMetrics,
		Sink:       sink,
		Watermarks: watermarks,
	})
	requireResource(ctx, logg, "backfill service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithField(runCtx, "env", cfg.App.Env)

	result, err := service.Run(runCtx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logg.Warn(ctx, "backfill interrupted")
			os.Exit(1)
		}
		logg.Error(runCtx, "backfill failed", err)
		os.Exit(1)
	}
	if result.PartialSuccess() {
		logg.Warn(runCtx, fmt.Sprintf("backfill finished with %d skipped uploads", result.SinkFailures))
		os.Exit(exitPartial)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
