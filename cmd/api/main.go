// Package main provides the entrypoint for the PawTrail API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pawtrail/pawtrail/internal/alert"
	"github.com/pawtrail/pawtrail/internal/api"
	"github.com/pawtrail/pawtrail/internal/api/middleware"
	"github.com/pawtrail/pawtrail/internal/auth"
	"github.com/pawtrail/pawtrail/internal/claim"
	"github.com/pawtrail/pawtrail/internal/database"
	"github.com/pawtrail/pawtrail/internal/device"
	"github.com/pawtrail/pawtrail/internal/events"
	"github.com/pawtrail/pawtrail/internal/notification"
	"github.com/pawtrail/pawtrail/internal/notify"
	"github.com/pawtrail/pawtrail/internal/presence"
	"github.com/pawtrail/pawtrail/internal/push/expo"
	"github.com/pawtrail/pawtrail/internal/push/fcm"
	"github.com/pawtrail/pawtrail/internal/push/resilience"
	"github.com/pawtrail/pawtrail/internal/telemetry"
	"github.com/pawtrail/pawtrail/internal/user"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "pawtrail-api"

	// Load .env for local development; in deployed environments the
	// variables come from the runtime.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting PawTrail API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	transportMetrics, err := middleware.NewTransportMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize transport metrics")
		os.Exit(1)
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize JWT validation (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	authService := auth.NewService(auth.Config{
		SigningKey: jwtSigningKey,
		Issuer:     "https://api.pawtrail.app",
		Audience:   "pawtrail-api",
	})
	log.Info().Msg("auth service initialized")

	// Event bus: producers publish, the notify subscriber fans out on the
	// dispatcher goroutine.
	bus := events.NewBus(log, 256)

	// Initialize domain repositories and services
	userService := user.NewService(user.NewPostgresRepository(pool), bus)
	alertService := alert.NewService(alert.NewPostgresRepository(pool), bus)
	claimService := claim.NewService(claim.NewPostgresRepository(pool), alertService, bus)
	deviceRegistry := device.NewRegistry(device.NewPostgresRepository(pool))
	notificationStore := notification.NewStore(notification.NewPostgresRepository(pool))
	log.Info().Msg("domain services initialized")

	// Initialize push transports behind resilient clients, registered for
	// the ops status endpoint.
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
		log.Info().Str("project_id", fcmProjectID).Msg("FCM transport initialized")
	} else {
		log.Warn().Msg("FCM not configured - bare FCM tokens will not receive pushes")
	}

	// Fan-out orchestration
	orchestratorCfg := notify.OrchestratorConfig{
		Records: notificationStore,
		Devices: deviceRegistry,
		Expo:    expoClient,
		Logger:  log,
		Health:  transportRegistry,
		Metrics: transportMetrics,
	}
	if fcmClient != nil {
		orchestratorCfg.FCM = fcmClient
	}
	orchestrator := notify.NewOrchestrator(orchestratorCfg)

	presenceRegistry := presence.NewRegistry()
	subscriber := notify.NewSubscriber(orchestrator, userService, presenceRegistry, log)
	bus.Subscribe(subscriber.HandleEvent)

	busCtx, busCancel := context.WithCancel(ctx)
	defer busCancel()
	bus.Start(busCtx)
	log.Info().Msg("fan-out subscriber started")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:           Version,
		BuildTime:         BuildTime,
		Logger:            log,
		ServiceName:       serviceName,
		Metrics:           metrics,
		AuthService:       authService,
		DeviceRegistry:    deviceRegistry,
		NotificationStore: notificationStore,
		AlertService:      alertService,
		ClaimService:      claimService,
		UserService:       userService,
		DB:                pool,
		TransportRegistry: transportRegistry,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	// Stop the dispatcher after the server has drained so in-flight
	// requests can still publish.
	busCancel()
	bus.Wait()

	log.Info().Msg("server stopped")
}
