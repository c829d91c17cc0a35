package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/soundstage-events/backoffice/api"
	"github.com/soundstage-events/backoffice/cache"
	"github.com/soundstage-events/backoffice/config"
	"github.com/soundstage-events/backoffice/store"
	"github.com/soundstage-events/backoffice/utils"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()

	if err := utils.InitLogger(config.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Logger.Sync()

	if config.JWTSecret == "" {
		utils.Logger.Fatal("JWT_SECRET must be set")
	}

	// Initialize MongoDB
	if err := utils.ConnectMongo(config.MongoURI); err != nil {
		utils.Logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var responseCache cache.Cache = cache.Noop{}
	if config.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, config.RedisURL, config.CacheTTL)
		if err != nil {
			utils.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rc.Close()
		responseCache = rc
		utils.Logger.Info("Response cache enabled", zap.Duration("ttl", config.CacheTTL))
	}

	storage, err := utils.InitS3(ctx, config.AWSRegion, config.AWSBucketName, config.S3PublicBaseURL)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize S3", zap.Error(err))
	}

	srv := &api.Server{
		Store:   store.NewMongoStore(utils.GetDatabase(config.DBName)),
		Cache:   responseCache,
		Storage: storage,
		Mailer: &utils.SendGridMailer{
			APIKey:    config.SendGridAPIKey,
			FromName:  config.SenderName,
			FromEmail: config.SenderEmail,
		},
		NotifyEmail: config.NotifyEmail,
		GoogleOAuth: api.GoogleOAuthConfig(),
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
	})

	handler := utils.RecoveryMiddleware(utils.LatencyMiddleware(c.Handler(srv.Router())))

	httpServer := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		utils.Logger.Info("Server starting", zap.String("port", config.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		utils.Logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	utils.DisconnectMongo(shutdownCtx)
}
