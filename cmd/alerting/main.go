package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smukkama/aquasure-server/internal/alerting"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
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
	lg = lg.With("service", "alerting")

	lg.Info("starting alerting service")

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		lg.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		lg.Fatal("failed to connect to Redis", "addr", cfg.Redis.Addr, "error", err)
	}
	lg.Info("connected to Redis", "addr", cfg.Redis.Addr)

	if err := queue.EnsureTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts, 1, 1); err != nil {
		lg.Warn("topic creation failed (may already exist)", "topic", cfg.Kafka.TopicAlerts, "error", err)
	}

	states := alerting.NewStateManager(redisClient, alerting.DefaultStateTTL)

	alertProducer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAlerts)
	defer alertProducer.Close()

	evaluator := alerting.NewEvaluator(db, states, alertProducer, lg)

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSamples, "alerting-group")
	defer consumer.Close()

	batchConsumer := queue.NewBatchConsumer(consumer, evaluator, queue.BatchOptions{
		BatchSize:     cfg.Kafka.BatchSize,
		FlushInterval: cfg.Kafka.FlushInterval,
	}, lg)
	batchConsumer.Start(ctx)
	defer batchConsumer.Stop()

	go reportStates(ctx, states, consumer, lg)

	lg.Info("alerting service is running", "topic", cfg.Kafka.TopicSamples)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Info("shutting down gracefully")
}

// reportStates logs the alert state counts and consumer lag every minute
func reportStates(ctx context.Context, states *alerting.StateManager, consumer *queue.Consumer, lg *logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts, err := states.CountStates(ctx)
			if err != nil {
				lg.Warn("failed to count alert states", "error", err)
				continue
			}
			stats := consumer.Stats()
			lg.Info("alerting statistics",
				"raised", counts[alerting.AlertStateRaised],
				"notified", counts[alerting.AlertStateNotified],
				"lag", stats.Lag,
				"messages", stats.Messages)
		}
	}
}
