package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/akorchak/urlstash-server/internal/config"
	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/queue"
	"github.com/akorchak/urlstash-server/internal/repository/postgres"
	storage "github.com/akorchak/urlstash-server/internal/storage/minio"
	"github.com/akorchak/urlstash-server/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	fileRepo := postgres.NewFileRepository(db)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	redisClient, err := queue.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	consumer := queue.NewConsumer(redisClient, cfg.Redis, logger)
	fetcher := worker.NewFetcher(fileRepo, storageClient, cfg.Worker.FetchTimeout, logger)
	runner := worker.NewRunner(consumer, fetcher, cfg.Worker.Count, logger)

	// Blocks until the signal context is cancelled and consumers drain.
	runner.Run(ctx)

	logger.Info("shutdown complete")
}
