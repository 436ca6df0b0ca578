package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smukkama/aquasure-server/internal/auth"
	"github.com/smukkama/aquasure-server/internal/database"
	"github.com/smukkama/aquasure-server/internal/logger"
	"github.com/smukkama/aquasure-server/internal/queue"
	"github.com/smukkama/aquasure-server/internal/server"
	"github.com/smukkama/aquasure-server/internal/standards"
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
	lg = lg.With("service", "api")

	if cfg.Log.Mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	lg.Info("starting AquaSure API server")

	verifier, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		lg.Fatal("invalid auth configuration", "error", err)
	}

	registry, err := standards.Load(cfg.Standards.File)
	if err != nil {
		lg.Fatal("failed to load standards", "file", cfg.Standards.File, "error", err)
	}
	lg.Info("standards loaded", "standards", registry.Names())

	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		lg.Fatal("failed to connect to database", "error", err)
	}
	defer db.Close()
	lg.Info("connected to database", "host", cfg.Database.Host, "name", cfg.Database.DBName)

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	applied, err := db.RunMigrations(migrateCtx, "migrations")
	cancel()
	if err != nil {
		lg.Fatal("failed to run migrations", "error", err)
	}
	lg.Info("migrations applied", "files", applied)

	if err := queue.EnsureTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicSamples, cfg.Kafka.NumPartitions, 1); err != nil {
		lg.Warn("topic creation failed (may already exist)", "topic", cfg.Kafka.TopicSamples, "error", err)
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSamples)
	defer producer.Close()

	dispatcher := server.NewDispatcher(producer, lg.With("component", "dispatcher"), runtime.NumCPU(), 1000)
	dispatcher.Start()
	defer dispatcher.Stop()

	router := server.NewRouter(server.RouterConfig{
		Store:          db,
		Events:         dispatcher,
		Verifier:       verifier,
		Standards:      registry,
		Log:            lg,
		AllowedOrigins: cfg.HTTPServer.AllowedOrigins,
		MaxUploadBytes: cfg.HTTPServer.MaxUploadBytes,
	})

	httpServer := server.NewHTTPServer(&cfg.HTTPServer, router, lg)
	if err := httpServer.Start(); err != nil {
		lg.Fatal("failed to start HTTP server", "error", err)
	}
	defer httpServer.Stop()

	lg.Info("AquaSure API server is running", "addr", httpServer.Addr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	lg.Info("shutting down gracefully")
}
