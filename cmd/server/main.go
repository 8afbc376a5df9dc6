package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"hdpay/internal/application/dto"
	"hdpay/internal/infrastructure/config"
	"hdpay/internal/infrastructure/di"
	"hdpay/internal/infrastructure/logging"
	"hdpay/internal/infrastructure/scheduler"
)

func main() {
	bootLogger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		bootLogger.Printf("startup config error code=%s message=%s metadata=%v", cfgErr.Code, cfgErr.Message, cfgErr.Metadata)
		os.Exit(1)
	}

	logger, logCloser := logging.New(os.Stdout, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogFileMaxSizeMB,
		MaxBackups: cfg.LogFileMaxBackups,
		MaxAgeDays: cfg.LogFileMaxAgeDays,
	})
	defer logCloser.Close()

	container, buildErr := di.BuildServer(cfg, logger)
	if buildErr != nil {
		logger.Printf("dependency wiring error: %v", buildErr)
		os.Exit(1)
	}
	defer func() {
		if err := container.Database.Close(); err != nil {
			logger.Printf("database close warning error=%v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("persistence initialization starting database=%s", cfg.Database.Redacted())
	persistence, persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
		ReadinessTimeout:       cfg.DBReadinessTimeout,
		ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
	})
	if persistenceErr != nil {
		logger.Printf(
			"persistence initialization failed code=%s message=%s metadata=%v",
			persistenceErr.Code,
			persistenceErr.Message,
			persistenceErr.Details,
		)
		os.Exit(1)
	}
	logger.Printf(
		"persistence initialization completed database=%s readiness_attempts=%d",
		cfg.Database.Redacted(),
		persistence.ReadinessAttempts,
	)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		scheduler.Group(workerCtx, container.Workers(), logger)
	}()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- container.Server.Start()
	}()

	exitCode := 0
	select {
	case err := <-serverErrCh:
		if err != nil {
			logger.Printf("server startup failed: %v", err)
			exitCode = 1
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		if err := container.Server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("graceful shutdown failed: %v", err)
			exitCode = 1
		} else if err := <-serverErrCh; err != nil {
			logger.Printf("server stopped with error: %v", err)
			exitCode = 1
		}
		cancel()
	}

	stopWorkers()
	workers.Wait()
	logger.Printf("server stopped")

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
