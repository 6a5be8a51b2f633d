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

	"github.com/SherClockHolmes/webpush-go"
	"github.com/rs/cors"

	"command-center-backend/config"
	"command-center-backend/internal/action"
	"command-center-backend/internal/api"
	"command-center-backend/internal/clubapi"
	"command-center-backend/internal/db"
	"command-center-backend/internal/events"
	"command-center-backend/internal/live"
	"command-center-backend/internal/notification"
	"command-center-backend/internal/store"
	"command-center-backend/internal/syncer"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "command-center ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Upstream.BaseURL == "" || cfg.Upstream.APIKey == "" {
		logger.Fatalf("upstream.base_url and upstream.api_key must be configured")
	}

	// Check for VAPID keys when push alerts are on
	var webpushOptions *webpush.Options
	if cfg.Push.Enabled {
		if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
			logger.Fatalf("push is enabled but the VAPID keys are missing. Please generate them and add them to your config file.")
		}
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}

	// Initialize the subscription database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewMemStore()
	bus := events.NewBus()
	client := clubapi.NewClient(&cfg.Upstream)
	logger.Println("data store initialized")

	// Alert workers only run when push is configured
	var alerts syncer.AlertDispatcher
	if webpushOptions != nil {
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		alerts = pool
	}

	// Initialize and run the sync service in the background
	syncSvc := syncer.NewService(cfg, appStore, client, bus, alerts)
	go syncSvc.Run(ctx)

	// The upstream live feed is optional; polling covers its absence
	if cfg.Live.Enabled {
		feed := live.NewClient(&cfg.Live, cfg.Upstream.APIKey, bus)
		go feed.Run(ctx)
	}

	// The hub relays bus events to connected dashboards
	hub := live.NewHub(bus)
	go hub.Run(ctx)

	actions := action.NewManager(client, appStore, bus)

	// Initialize router
	router := api.NewRouter(cfg, appStore, actions, hub, gormDB, webpushOptions)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: corsHandler,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
