package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/notification"
	"github.com/smukkama/aquasure-server/internal/queue"
	"github.com/smukkama/aquasure-server/pkg/config"
)

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
	lg = lg.With("service", "notification")

	lg.Info("starting notification service")

	notifier := notification.NewEmailNotifier(&cfg.SMTP, lg)
	if err := notifier.TestConnection(); err != nil {
		lg.Warn("SMTP unavailable, notifications will be logged only", "error", err)
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, "notification-group")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// one email at a time keeps the SMTP relay happy
	batchConsumer := queue.NewBatchConsumer(consumer, notifier, queue.BatchOptions{
		BatchSize:     1,
		FlushInterval: cfg.Kafka.FlushInterval,
	}, lg)
	batchConsumer.Start(ctx)
	defer batchConsumer.Stop()

	lg.Info("notification service is running", "topic", cfg.Kafka.TopicAlerts)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Info("shutting down gracefully")
}
