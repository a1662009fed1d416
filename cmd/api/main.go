package main

import (
	"context"
	"log"
	"time"

	"chatlink/config"
	"chatlink/internal/handler"
	"chatlink/internal/redis"
	"chatlink/internal/repository"
	"chatlink/internal/server"
	"chatlink/internal/services"
	"chatlink/internal/storage"
	"chatlink/pkg/database"
	"chatlink/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	database.Connect(cfg)
	defer func() {
		if err := database.Disconnect(); err != nil {
			l.Errorf("Error disconnecting from database: %s", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	redis.Initialize(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	redisClient := redis.GetClient()

	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())
	profileCache := redis.NewProfileCache(redisClient, redis.DefaultCacheConfig())
	tokenStore := redis.NewRefreshTokenStore(redisClient)

	db := database.DB()
	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Uploads are optional; without S3 config the avatar endpoint reports
	// uploads as not configured.
	var s3Client *storage.Client
	if cfg.S3Bucket != "" {
		var err error
		s3Client, err = storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: 15 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to create S3 client: %v", err)
		}
	}

	authService := services.NewAuthService(userRepo, tokenStore, cfg)
	chatService := services.NewChatService(chatRepo, userRepo, profileCache, cfg)
	messageService := services.NewMessageService(messageRepo, chatRepo)
	uploadService := services.NewUploadService(s3Client, userRepo, profileCache)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Chat:    handler.NewChatHandler(chatService),
		Message: handler.NewMessageHandler(messageService),
		User:    handler.NewUserHandler(userRepo, uploadService),
	}, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
