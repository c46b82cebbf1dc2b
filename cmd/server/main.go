package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/akorchak/urlstash-server/internal/api/http/handler"
	"github.com/akorchak/urlstash-server/internal/api/http/middleware"
	"github.com/akorchak/urlstash-server/internal/api/http/router"
	"github.com/akorchak/urlstash-server/internal/config"
	"github.com/akorchak/urlstash-server/internal/logger"
	"github.com/akorchak/urlstash-server/internal/password"
	"github.com/akorchak/urlstash-server/internal/queue"
	"github.com/akorchak/urlstash-server/internal/repository/postgres"
	storage "github.com/akorchak/urlstash-server/internal/storage/minio"
	"github.com/akorchak/urlstash-server/internal/token"

	"golang.org/x/crypto/bcrypt"

	"github.com/akorchak/urlstash-server/internal/service"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
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

	userRepo := postgres.NewUserRepository(db)
	fileRepo := postgres.NewFileRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)

	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := password.NewBcrypt(bcrypt.DefaultCost)

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
	producer := queue.NewProducer(redisClient, cfg.Redis)

	authService := service.NewAuth(userRepo, refreshTokenRepo, tokenManager, hasher, logger)
	fileService := service.NewFile(fileRepo, userRepo, storageClient, producer, logger)

	authHandler := handler.NewAuth(authService, logger)
	fileHandler := handler.NewFile(fileService, logger)
	authenticate := middleware.NewAuthenticate(tokenManager, userRepo)

	engine := router.New(authHandler, fileHandler, authenticate)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Addr)
	}

	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
