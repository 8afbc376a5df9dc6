package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"hdpay/internal/adapters/inbound/cli"
	"hdpay/internal/adapters/outbound/wallet/hd"
	"hdpay/internal/application/dto"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/infrastructure/config"
	"hdpay/internal/infrastructure/di"
	"hdpay/internal/infrastructure/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCommand(cli.Dependencies{
		LoadServices: loadServices,
		LoadDeriver:  loadDeriver,
	})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}

// loadServices logs to stderr so that --format json output on stdout stays
// machine readable.
func loadServices(ctx context.Context) (cli.Services, func(), error) {
	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		return cli.Services{}, nil, fmt.Errorf("%s: %s", cfgErr.Code, cfgErr.Message)
	}

	logger, logCloser := logging.New(os.Stderr, logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogFileMaxSizeMB,
		MaxBackups: cfg.LogFileMaxBackups,
		MaxAgeDays: cfg.LogFileMaxAgeDays,
	})

	application, err := di.BuildApplication(cfg, logger)
	if err != nil {
		logCloser.Close()
		return cli.Services{}, nil, err
	}
	closeAll := func() {
		if closeErr := application.Database.Close(); closeErr != nil {
			logger.Printf("database close warning error=%v", closeErr)
		}
		logCloser.Close()
	}

	_, appErr := application.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
		ReadinessTimeout:       cfg.DBReadinessTimeout,
		ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
	})
	if appErr != nil {
		closeAll()
		return cli.Services{}, nil, fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
	}

	return cli.Services{
		CreateInvoice: application.CreateInvoiceUseCase,
		GetInvoice:    application.GetInvoiceUseCase,
		CheckInvoice:  application.CheckInvoiceUseCase,
		CancelInvoice: application.CancelInvoiceUseCase,
		PaymentCheck:  application.PaymentCheckWorker,
		Finalize:      application.FinalizeWorker,
		Expire:        application.ExpireWorker,
	}, closeAll, nil
}

func loadDeriver() (portsout.AddressDeriver, error) {
	if cfgErr := config.LoadEnvFile(config.DefaultEnvFile); cfgErr != nil {
		return nil, fmt.Errorf("%s: %s", cfgErr.Code, cfgErr.Message)
	}
	seedPhrase, cfgErr := config.LoadSeedPhrase()
	if cfgErr != nil {
		return nil, fmt.Errorf("%s: %s", cfgErr.Code, cfgErr.Message)
	}
	deriver, keyErr := hd.NewDeriver(seedPhrase, log.New(io.Discard, "", 0))
	if keyErr != nil {
		return nil, fmt.Errorf("%s: %s", keyErr.Code, keyErr.Message)
	}
	return deriver, nil
}
