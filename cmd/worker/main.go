// Package main provides the entrypoint for the PawTrail fan-out worker.
// It consumes alert fan-out jobs from Pub/Sub and drives the same
// notification pipeline the API runs in-process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/database"
	"github.com/pawtrail/pawtrail/internal/device"
	"github.com/pawtrail/pawtrail/internal/notification"
	"github.com/pawtrail/pawtrail/internal/notify"
	"github.com/pawtrail/pawtrail/internal/push/expo"
	"github.com/pawtrail/pawtrail/internal/push/fcm"
	"github.com/pawtrail/pawtrail/internal/push/resilience"
	"github.com/pawtrail/pawtrail/internal/user"
	"github.com/pawtrail/pawtrail/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "pawtrail-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting PawTrail worker")

	// Worker also exposes a health endpoint for Cloud Run.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	projectID := os.Getenv("PUBSUB_PROJECT_ID")
	subscriptionName := os.Getenv("PUBSUB_SUBSCRIPTION")
	if subscriptionName == "" {
		subscriptionName = "alert-fanout-jobs"
	}
	if projectID == "" {
		log.Fatal().Msg("PUBSUB_PROJECT_ID is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// The worker publishes no events of its own, so services run without
	// a bus.
	userService := user.NewService(user.NewPostgresRepository(pool), nil)
	alertService := alert.NewService(alert.NewPostgresRepository(pool), nil)
	deviceRegistry := device.NewRegistry(device.NewPostgresRepository(pool))
	notificationStore := notification.NewStore(notification.NewPostgresRepository(pool))

	// Push transports
	transportRegistry := resilience.NewRegistry()

	expoHTTPClient := resilience.NewClient(resilience.DefaultClientConfig(expo.TransportName))
	transportRegistry.Register(expo.TransportName, expoHTTPClient)
	expoClient := expo.NewClient(expo.ClientConfig{
		HTTPClient: expoHTTPClient,
		Logger:     log,
	})

	var fcmClient *fcm.Client
	fcmProjectID := os.Getenv("FCM_PROJECT_ID")
	fcmCredentialsPath := os.Getenv("FCM_CREDENTIALS_FILE")
	if fcmProjectID != "" && fcmCredentialsPath != "" {
		credentials, readErr := os.ReadFile(fcmCredentialsPath)
		if readErr != nil {
			log.Fatal().Err(readErr).Msg("failed to read FCM credentials file")
		}
		fcmHTTPClient := resilience.NewClient(resilience.DefaultClientConfig(fcm.TransportName))
		transportRegistry.Register(fcm.TransportName, fcmHTTPClient)
		fcmClient = fcm.NewClient(fcm.ClientConfig{
			ProjectID:       fcmProjectID,
			CredentialsJSON: credentials,
			HTTPClient:      fcmHTTPClient,
			Logger:          log,
		})
	} else {
		log.Warn().Msg("FCM not configured - bare FCM tokens will not receive pushes")
	}

	orchestratorCfg := notify.OrchestratorConfig{
		Records: notificationStore,
		Devices: deviceRegistry,
		Expo:    expoClient,
		Logger:  log,
		Health:  transportRegistry,
	}
	if fcmClient != nil {
		orchestratorCfg.FCM = fcmClient
	}
	orchestrator := notify.NewOrchestrator(orchestratorCfg)

	// No presence suppression in the worker: alert fan-out never targets
	// chat rooms.
	subscriber := notify.NewSubscriber(orchestrator, userService, nil, log)

	fanoutJob := worker.NewFanoutJob(worker.FanoutJobConfig{
		Alerts:  alertService,
		Handler: subscriber.HandleEvent,
		Logger:  log,
	})

	pubsubHandler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
		ProjectID:        projectID,
		SubscriptionName: subscriptionName,
		FanoutJob:        fanoutJob,
		Logger:           log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create pubsub handler")
	}
	defer pubsubHandler.Close() //nolint:errcheck // best effort cleanup

	// Health check server
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Receive blocks until ctx is cancelled.
	go func() {
		if err := pubsubHandler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("pubsub receive stopped")
			cancel()
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
