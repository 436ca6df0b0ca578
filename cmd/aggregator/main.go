package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smukkama/aquasure-server/internal/aggregation"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/standards"
	"github.com/smukkama/aquasure-server/internal/timer"
	"github.com/smukkama/aquasure-server/pkg/config"
)

const dailyTaskID = "daily-aggregation"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()
	lg = lg.With("service", "aggregator")

	lg.Info("starting aggregation service")

	registry, err := standards.Load(cfg.Standards.File)
	if err != nil {
		lg.Fatal("failed to load standards", "file", cfg.Standards.File, "error", err)
	}

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		lg.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	scheduler := timer.NewScheduler(cfg.Aggregation.Workers)
	scheduler.Start()
	defer scheduler.Stop()

	daily := aggregation.NewDailyAggregator(db, registry, lg)

	next := func(now time.Time) time.Time {
		// DailyTime is validated by config.Load
		run, _ := aggregation.NextRunTime(cfg.Aggregation.DailyTime, now)
		lg.Info("next daily aggregation scheduled", "at", run.Format("2006-01-02 15:04:05"))
		return run
	}
	err = scheduler.Every(dailyTaskID, next, func(ctx context.Context) {
		if _, err := daily.AggregatePreviousDay(ctx); err != nil {
			lg.Error("daily aggregation failed", "error", err)
		}
	})
	if err != nil {
		lg.Fatal("failed to schedule daily aggregation", "error", err)
	}

	lg.Info("aggregation service is running", "daily_time", cfg.Aggregation.DailyTime)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Info("shutting down gracefully", "stats", scheduler.Stats())
}
