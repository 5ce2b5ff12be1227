package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"uniride/internal/app"
	"uniride/internal/auth"
	"uniride/internal/config"
	"uniride/internal/handler"
	internalRedis "uniride/internal/redis"
	"uniride/internal/repository/postgres"
	"uniride/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic comes up first so the DB and Redis clients get instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server := wireServer(db, redisClient, nrApp, cfg)

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Redis stores.
	locationStore := internalRedis.NewTripLocationStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	userRepo := postgres.NewUserRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	appRepo := postgres.NewApplicationRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Auth.
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Services.
	notificationService := service.NewNotificationService()
	receiptService := service.NewReceiptService(notificationService)
	fareService := service.NewFareService(locationStore)
	psp := service.NewMockPSP()
	paymentService := service.NewPaymentService(paymentRepo, psp)
	tripService := service.NewTripService(
		db, tripRepo, appRepo, userRepo, vehicleRepo,
		lockStore, locationStore, cacheStore,
		fareService, paymentService, receiptService, notificationService,
	)
	bookingService := service.NewBookingService(
		db, tripRepo, appRepo, userRepo,
		lockStore, locationStore, cacheStore,
		notificationService,
	)
	vehicleService := service.NewVehicleService(vehicleRepo, userRepo)
	accountService := service.NewAccountService(userRepo, tokens)

	// Handlers.
	tripHandler := handler.NewTripHandler(tripService, bookingService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)
	userHandler := handler.NewUserHandler(accountService)
	authHandler := handler.NewAuthHandler(accountService, tokens, cacheStore)

	router := app.NewRouter(app.RouterDeps{
		TripHandler:    tripHandler,
		VehicleHandler: vehicleHandler,
		UserHandler:    userHandler,
		AuthHandler:    authHandler,
		TokenManager:   tokens,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		CORS:           cfg.CORS,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
