package main

// @title           Remaudio Service API
// @version         1.0
// @description     Music library and playback synchronization service
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remaudio-service/internal/api/routes"
	"remaudio-service/internal/config"
	"remaudio-service/internal/database"
	"remaudio-service/internal/events"
	"remaudio-service/internal/multiplay"
	"remaudio-service/internal/services"
	"remaudio-service/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting remaudio server")

	// PostgreSQL
	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// MinIO
	minioClient, err := storage.NewMinIOClient(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.UseSSL,
	)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	redisService := services.NewRedisService(redisClient)

	// Playback relay
	rooms := multiplay.NewRoomRegistry(cfg.Multiplay.MaxFollowers)
	conns := multiplay.NewConnectionRegistry()
	hub := multiplay.NewHub()
	mpHandler := multiplay.NewHandler(rooms, conns, hub)

	// Kafka is optional; activity records are skipped when no brokers are set.
	var producer *events.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			slog.Error("Failed to connect to Kafka", "error", err)
			os.Exit(1)
		}
		mpHandler.SetActivityPublisher(producer)
	}

	reaper := multiplay.NewReaper(rooms, mpHandler, cfg.Multiplay.SweepInterval, cfg.Multiplay.InactivityThreshold)
	go reaper.Run()

	router := routes.NewRouter(cfg, db, minioClient, redisService, hub, mpHandler, rooms, conns)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reaper.Stop()
	hub.CloseAll()

	if producer != nil {
		if err := producer.Close(); err != nil {
			slog.Error("Failed to close Kafka producer", "error", err)
		}
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
