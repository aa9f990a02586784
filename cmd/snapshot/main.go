package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/edqm-seeder/internal/snapshot"
	"github.com/angelmondragon/edqm-seeder/pkg/config"
	"github.com/angelmondragon/edqm-seeder/pkg/logger"
	"github.com/angelmondragon/edqm-seeder/pkg/storage/gcs"
	"github.com/angelmondragon/edqm-seeder/pkg/warehouse"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "snapshot"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "snapshot",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithField(runCtx, "env", cfg.App.Env)

	sf, err := warehouse.Connect(runCtx, cfg.Snowflake, logg)
	requireResource(ctx, logg, "snowflake", err)
	defer func() {
		if err := sf.Close(); err != nil {
			logg.Error(ctx, "failed to close snowflake connection", err)
		}
	}()

	var sink snapshot.Sink
	if cfg.GCS.BucketName != "" {
		client, err := gcs.NewClient(runCtx, cfg.GCS, logg)
		requireResource(ctx, logg, "gcs client", err)
		sink = client
	}

	service, err := snapshot.NewService(snapshot.ServiceParams{
		DB:        sf.DB(),
		Logger:    logg,
		Sink:      sink,
		OutputDir: cfg.Backfill.DataDir,
	})
	requireResource(ctx, logg, "snapshot service", err)

	if _, err := service.Run(runCtx); err != nil {
		logg.Error(runCtx, "snapshot failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
