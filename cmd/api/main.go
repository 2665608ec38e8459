package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alerta-api/internal/config"
	"github.com/alerta-api/internal/infrastructure/dynamo"
	"github.com/alerta-api/internal/infrastructure/fulltrack"
	"github.com/alerta-api/internal/infrastructure/geocode"
	jwtinfra "github.com/alerta-api/internal/infrastructure/jwt"
	"github.com/alerta-api/internal/infrastructure/realtime"
	s3infra "github.com/alerta-api/internal/infrastructure/s3"
	"github.com/alerta-api/internal/infrastructure/sns"
	"github.com/alerta-api/internal/infrastructure/traccar"
	"github.com/alerta-api/internal/pkg/background"
	transporthttp "github.com/alerta-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider is optional: auth routes degrade to passthrough without it.
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// S3 store for reporter images.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.AWSRegion)

	// SNS push transport, also optional.
	var pusher sns.Pusher
	if p, err := sns.NewPusher(cfg); err == nil {
		pusher = p
	} else {
		log.Printf("WARN: SNS pusher not available: %v", err)
	}

	// Realtime hub for monitoring dashboards.
	hub := realtime.NewHub()
	go hub.Run()

	// Background runner for the detached pipeline steps (fan-out, telemetry).
	runner := background.New(64, 30*time.Second)
	defer runner.Close()

	deps := &transporthttp.Deps{
		AlertRepo:        dynamo.NewAlertRepo(dynamoClient, cfg.DynamoTables.Alerts),
		AlertTypeRepo:    dynamo.NewAlertTypeRepo(dynamoClient, cfg.DynamoTables.AlertTypes),
		AlertStateRepo:   dynamo.NewAlertStateRepo(dynamoClient, cfg.DynamoTables.AlertStates),
		CheckpointRepo:   dynamo.NewCheckpointRepo(dynamoClient, cfg.DynamoTables.Checkpoints),
		CustomerRepo:     dynamo.NewCustomerRepo(dynamoClient, cfg.DynamoTables.Customers),
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		DeviceRepo:       dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices),
		ContactRepo:      dynamo.NewContactRepo(dynamoClient, cfg.DynamoTables.Contacts),
		LocationRepo:     dynamo.NewLocationRepo(dynamoClient, cfg.DynamoTables.Locations),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		SnapshotRepo:     dynamo.NewSnapshotRepo(dynamoClient, cfg.DynamoTables.DeviceSnapshots),

		S3Store:         s3Store,
		Pusher:          pusher,
		Geocoder:        geocode.NewClient(cfg),
		TraccarClient:   traccar.NewClient(),
		FulltrackClient: fulltrack.NewClient(),
		Hub:             hub,
		Runner:          runner,
		JWTProvider:     jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	runner.Wait()
	log.Println("Server stopped")
}
