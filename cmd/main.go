package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mvallespi/dupscan/internal/analysis"
	"github.com/mvallespi/dupscan/internal/api"
	"github.com/mvallespi/dupscan/internal/batch"
	"github.com/mvallespi/dupscan/internal/config"
	"github.com/mvallespi/dupscan/internal/configs/env"
	"github.com/mvallespi/dupscan/internal/infra/mongo"
	redisInfra "github.com/mvallespi/dupscan/internal/infra/redis"
	"github.com/mvallespi/dupscan/internal/logger"
	"github.com/mvallespi/dupscan/internal/repository"
	"github.com/mvallespi/dupscan/internal/store"
	"github.com/mvallespi/dupscan/internal/stream"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)

	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve(cfg)
		return
	}

	runBatch(cfg)
}

// runBatch executes a single batch over the submissions directory and exits.
func runBatch(cfg *config.Config) {
	log.Info().Msg("Starting duplication scan")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := analysis.NewWorkerPool(ctx)
	defer pool.Close()

	recordStore := store.Open(cfg.StorePath())
	runner := batch.NewRunner(cfg, recordStore, pool, nil, nil)

	runID := uuid.New().String()
	report, results, err := runner.Run(ctx, runID, "")
	if err != nil {
		log.Fatal().Err(err).Msg("Scan failed")
	}

	fmt.Printf("Proyectos procesados: %d\n", len(results))
	fmt.Printf("Grupos identicos: %d\n", report.TotalIdentical)
	fmt.Printf("Copias parciales: %d\n", report.TotalPartial)
	fmt.Printf("Reporte: %s\n", cfg.ReportPath())
}

// serve runs the long-lived service: HTTP API, Redis stream consumer and
// the Mongo archive mirror.
func serve(cfg *config.Config) {
	if err := cfg.ValidateServe(); err != nil {
		panic(fmt.Sprintf("Invalid serve configuration: %v", err))
	}

	log.Info().Msg("Starting duplication scan server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect MongoDB
	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(ctx)

	// Connect Redis
	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	archive := repository.NewArchive(mongoRepo)

	tracker := batch.NewStatusTracker(redisClient.Client, cfg.StatusTTL)

	pool := analysis.NewWorkerPool(ctx)
	defer pool.Close()

	var recordStore store.RecordStore = store.Open(cfg.StorePath())
	if cfg.StoreBackend == config.StoreMongo {
		recordStore = repository.NewMongoStore(mongoRepo)
		log.Info().Msg("Using Mongo as the record store")
	}
	runner := batch.NewRunner(cfg, recordStore, pool, tracker, archive)

	// Initialize Redis stream consumer
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		runner,
		cfg.StreamRetentionDuration,
	)
	log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

	router := api.SetupRoutes(cfg, runner, tracker, archive)

	// Start Redis consumer in background
	consumerCtx, consumerCancel := context.WithCancel(ctx)
	go func() {
		defer consumerCancel()
		if err := consumer.Start(consumerCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Msg("Redis consumer started")

	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}

	log.Info().Msg("Shutdown complete")
}
