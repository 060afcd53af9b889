package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"fleet-leak-consumer/internal/config"
	"fleet-leak-consumer/internal/logger"
	"fleet-leak-consumer/internal/service"
)

const serviceName = "fleet-leak-consumer"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logging
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer log.Sync()

	// 3. Create the service
	leakService, err := service.NewLeakService(cfg, log)
	if err != nil {
		log.Fatal("Failed to create leak consumer service",
			zap.Error(err),
		)
	}
	defer leakService.Stop()

	// 4. Create a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Start the service in a goroutine
	serviceErrChan := make(chan error, 1)
	go func() {
		if err := leakService.Start(ctx); err != nil {
			serviceErrChan <- err
		}
	}()

	// 6. Wait for a shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down",
			zap.String("signal", sig.String()),
		)
		cancel()
	case err := <-serviceErrChan:
		log.Fatal("Service error",
			zap.Error(err),
		)
	}

	log.Info("Leak consumer service stopped")
}
