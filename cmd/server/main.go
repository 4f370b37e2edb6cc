package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medirank/service-hospital/internal/application"
	"github.com/medirank/service-hospital/internal/config"
	"github.com/medirank/service-hospital/internal/events"
	"github.com/medirank/service-hospital/internal/handler"
	"github.com/medirank/service-hospital/internal/logger"
	"github.com/medirank/service-hospital/internal/middleware"
	"github.com/medirank/service-hospital/internal/provider"
	"github.com/medirank/service-hospital/internal/repository"
	"github.com/medirank/service-hospital/internal/vision"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-hospital")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-hospital",
		zap.String("port", cfg.Port),
		zap.Bool("synthetic_enabled", cfg.Synthetic.Enabled),
		zap.Int("live_cameras", len(cfg.Live.CameraURLs)),
	)

	// Initialize wait-time store (in-process, non-durable)
	waitStore := repository.NewInMemoryWaitStore()

	// Initialize optional event publisher
	publisher := events.NewWaitEventPublisher(cfg.KafkaBrokers, log)
	defer func() { _ = publisher.Close() }()

	// Initialize occupancy estimator when a vision endpoint is configured
	var estimator vision.Estimator
	if cfg.VisionURL != "" {
		estimator = vision.NewRemoteEstimator(cfg.VisionURL, log)
		log.Info("occupancy estimator configured", zap.String("vision_url", cfg.VisionURL))
	} else {
		log.Warn("no occupancy estimator configured, camera pushes will be rejected")
	}

	// Initialize provider clients
	placesClient := provider.NewPlacesClient(cfg.GeoAPIKey, log)
	routesClient := provider.NewRoutesClient(cfg.GeoAPIKey, log)
	frameFetcher := provider.NewFrameFetcher(log)

	// Initialize occupancy resolver
	resolver := application.NewOccupancyResolver(
		waitStore,
		estimator,
		frameFetcher,
		publisher,
		application.ResolverConfig{
			SyntheticEnabled:     cfg.Synthetic.Enabled,
			PeopleMin:            cfg.Synthetic.PeopleMin,
			PeopleMax:            cfg.Synthetic.PeopleMax,
			MinutesMin:           cfg.Synthetic.MinutesMin,
			MinutesMax:           cfg.Synthetic.MinutesMax,
			CameraURLs:           cfg.Live.CameraURLs,
			LivePerPersonMinutes: cfg.Live.PerPersonMinutes,
		},
		rand.New(rand.NewSource(time.Now().UnixNano())),
		log,
	)

	// Initialize application services
	rankingService := application.NewRankingService(
		placesClient,
		routesClient,
		resolver,
		cfg.Live.HospitalID,
		log,
	)
	cameraService := application.NewCameraService(waitStore, estimator, publisher, log)

	// Initialize HTTP handlers
	nearbyHandler := handler.NewNearbyHandler(rankingService)
	cameraHandler := handler.NewCameraHandler(cameraService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := handler.NewHealthHandler("service-hospital")
	healthHandler.RegisterRoutes(router)

	// Register routes
	nearbyHandler.RegisterRoutes(&router.RouterGroup)
	cameraHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server. The write timeout leaves room for the route-matrix
	// call's own 20s budget.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-hospital...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-hospital stopped")
}
