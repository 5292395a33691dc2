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

	"fleet-maintenance-backend/config"
	"fleet-maintenance-backend/internal/api"
	"fleet-maintenance-backend/internal/catalog"
	"fleet-maintenance-backend/internal/db"
	"fleet-maintenance-backend/internal/engine"
	"fleet-maintenance-backend/internal/metrics"
	"fleet-maintenance-backend/internal/mw"
	"fleet-maintenance-backend/internal/notification"
	"fleet-maintenance-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "maintenance-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	metrics.Init()

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, cfg.Engine.InsertBatchSize)
	logger.Println("data store initialized")

	matcher, err := catalog.NewMatcher(cfg.Catalog.Synonyms)
	if err != nil {
		logger.Fatalf("invalid catalog synonyms: %v", err)
	}

	responses := mw.NewResponseCache(time.Duration(cfg.Server.CacheTTLSeconds) * time.Second)
	opts := []engine.Option{engine.OnReferenceChange(responses.Flush)}

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
		pool.Start(ctx)
		opts = append(opts, engine.WithAlertPusher(pool))
	} else {
		logger.Println("VAPID keys are not configured; alert push is disabled")
	}

	svc := engine.NewService(appStore, matcher, cfg, opts...)
	go svc.RunAlertLoop(ctx, cfg.Push.DispatchInterval)

	router := api.NewRouter(svc, appStore, webpushOptions, cfg.Server, responses)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
