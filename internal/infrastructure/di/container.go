package di

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"hdpay/api"
	"hdpay/internal/adapters/inbound/http/controllers"
	httpRouter "hdpay/internal/adapters/inbound/http/router"
	"hdpay/internal/adapters/outbound/chainquery"
	"hdpay/internal/adapters/outbound/docs"
	"hdpay/internal/adapters/outbound/exchangerate/coingecko"
	"hdpay/internal/adapters/outbound/fulfillment/webhook"
	"hdpay/internal/adapters/outbound/persistence/bootstrap"
	"hdpay/internal/adapters/outbound/persistence/ledger"
	"hdpay/internal/adapters/outbound/persistence/shared"
	"hdpay/internal/adapters/outbound/wallet/hd"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/application/use_cases"
	"hdpay/internal/domain/policies"
	valueobjects "hdpay/internal/domain/value_objects"
	"hdpay/internal/infrastructure/config"
	"hdpay/internal/infrastructure/httpserver"
	"hdpay/internal/infrastructure/scheduler"
)

// Application holds every use case and worker wired against one database.
// Both the HTTP server and the CLI are built from it.
type Application struct {
	Database                     *sql.DB
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase
	GetHealthUseCase             portsin.GetHealthUseCase
	GetOpenAPISpecUseCase        portsin.GetOpenAPISpecUseCase
	CreateInvoiceUseCase         portsin.CreateInvoiceUseCase
	GetInvoiceUseCase            portsin.GetInvoiceUseCase
	CheckInvoiceUseCase          portsin.CheckInvoiceUseCase
	CancelInvoiceUseCase         portsin.CancelInvoiceUseCase
	PaymentCheckWorker           *scheduler.Worker
	FinalizeWorker               *scheduler.Worker
	ExpireWorker                 *scheduler.Worker
}

func (a Application) Workers() []*scheduler.Worker {
	return []*scheduler.Worker{a.PaymentCheckWorker, a.FinalizeWorker, a.ExpireWorker}
}

type Container struct {
	Application
	Server *httpserver.Server
}

func BuildApplication(cfg config.Config, logger *log.Logger) (Application, error) {
	deriver, keyErr := hd.NewDeriver(cfg.SeedPhrase, logger)
	if keyErr != nil {
		return Application{}, fmt.Errorf("build address deriver: %s", keyErr.Code)
	}

	database, appErr := shared.OpenDatabase(cfg.Database, logger)
	if appErr != nil {
		return Application{}, fmt.Errorf("open database %s: %s", cfg.Database.Redacted(), appErr.Code)
	}

	httpClient := &http.Client{}
	clock := use_cases.NewSystemClock()
	thresholds := use_cases.ConfirmationThresholds(cfg.MinConfirmations)

	persistenceGateway := bootstrap.NewGateway(cfg.Database, database, logger)
	paymentLedger := ledger.NewRepository(database, cfg.Database.Dialect, logger)
	allocator := ledger.NewAddressIndexAllocator(database, cfg.Database.Dialect, logger)
	effects := ledger.NewBalanceEffectHandler(database, cfg.Database.Dialect, buildFulfillmentGateway(cfg, logger), logger)
	rates := coingecko.NewProvider(coingecko.Config{
		BaseURL:  cfg.CoinGeckoAPIURL,
		Timeout:  cfg.ExchangeRateTimeout,
		CacheTTL: cfg.ExchangeRateCacheTTL,
	}, httpClient, logger)
	chain := buildChainRegistry(cfg, httpClient)
	openAPIReadModel := docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath, api.OpenAPISpec)

	sweepUseCase := use_cases.NewSweepMonitoringPaymentsUseCase(paymentLedger, chain, thresholds, clock, logger)
	finalizeUseCase := use_cases.NewFinalizeConfirmedPaymentsUseCase(paymentLedger, effects, clock, logger)
	expireUseCase := use_cases.NewExpireStalePaymentsUseCase(paymentLedger, clock, logger)

	return Application{
		Database:                     database,
		InitializePersistenceUseCase: use_cases.NewInitializePersistenceUseCase(persistenceGateway, logger),
		GetHealthUseCase:             use_cases.NewGetHealthUseCase(persistenceGateway),
		GetOpenAPISpecUseCase:        use_cases.NewGetOpenAPISpecUseCase(openAPIReadModel),
		CreateInvoiceUseCase: use_cases.NewCreateInvoiceUseCase(
			paymentLedger,
			allocator,
			deriver,
			rates,
			use_cases.CreateInvoiceConfig{
				PaymentWindow: cfg.PaymentWindow,
				FiatCurrency:  use_cases.DefaultFiatCurrency,
				Pricing: policies.PricingRules{
					TopUpServiceFee:    cfg.TopUpServiceFee,
					PurchaseServiceFee: cfg.PurchaseServiceFee,
					MaxTopUp:           cfg.MaxTopUp,
				},
			},
			clock,
			logger,
		),
		GetInvoiceUseCase:    use_cases.NewGetInvoiceUseCase(paymentLedger),
		CheckInvoiceUseCase:  use_cases.NewCheckInvoiceUseCase(paymentLedger, chain, thresholds, clock, logger),
		CancelInvoiceUseCase: use_cases.NewCancelInvoiceUseCase(paymentLedger, clock, logger),
		PaymentCheckWorker: scheduler.NewWorker(
			scheduler.PaymentCheckWorkerName,
			workerSettings(cfg.PaymentCheckWorker),
			scheduler.PaymentCheckCycle(sweepUseCase, cfg.PaymentCheckWorker.BatchSize, cfg.BlockchainAPICallDelay),
			logger,
		),
		FinalizeWorker: scheduler.NewWorker(
			scheduler.FinalizeWorkerName,
			workerSettings(cfg.FinalizeWorker),
			scheduler.FinalizeCycle(finalizeUseCase, cfg.FinalizeWorker.BatchSize),
			logger,
		),
		ExpireWorker: scheduler.NewWorker(
			scheduler.ExpireWorkerName,
			workerSettings(cfg.ExpireWorker),
			scheduler.ExpireCycle(expireUseCase, cfg.ExpireWorker.BatchSize),
			logger,
		),
	}, nil
}

func BuildServer(cfg config.Config, logger *log.Logger) (Container, error) {
	application, err := BuildApplication(cfg, logger)
	if err != nil {
		return Container{}, err
	}

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:  controllers.NewHealthController(application.GetHealthUseCase, logger),
		SwaggerController: controllers.NewSwaggerController(application.GetOpenAPISpecUseCase, logger),
		InvoicesController: controllers.NewInvoicesController(
			application.CreateInvoiceUseCase,
			application.GetInvoiceUseCase,
			application.CheckInvoiceUseCase,
			application.CancelInvoiceUseCase,
			logger,
		),
		Logger: logger,
	})

	return Container{
		Application: application,
		Server:      httpserver.New(cfg.Address(), router, logger),
	}, nil
}

func buildChainRegistry(cfg config.Config, httpClient *http.Client) *chainquery.Registry {
	return chainquery.NewRegistry(map[valueobjects.Coin]portsout.BlockchainQueryGateway{
		valueobjects.CoinBTC: chainquery.NewBlockstreamClient(chainquery.BlockstreamConfig{
			BaseURL:           cfg.BlockstreamAPIURL,
			ConfirmedFallback: cfg.MinConfirmations[valueobjects.CoinBTC],
			HTTPTimeout:       cfg.BlockchainAPITimeout,
		}, httpClient),
		valueobjects.CoinLTC: chainquery.NewBlockCypherClient(chainquery.BlockCypherConfig{
			BaseURL:     cfg.BlockCypherAPIURL,
			Token:       cfg.BlockCypherAPIToken,
			HTTPTimeout: cfg.BlockchainAPITimeout,
		}, httpClient),
		valueobjects.CoinUSDTTRX: chainquery.NewTronGridClient(chainquery.TronGridConfig{
			BaseURL:                cfg.TronGridAPIURL,
			APIKey:                 cfg.TronGridAPIKey,
			ContractAddress:        cfg.USDTContractAddress,
			ConfirmedConfirmations: cfg.MinConfirmations[valueobjects.CoinUSDTTRX],
			HTTPTimeout:            cfg.BlockchainAPITimeout,
		}, httpClient),
	})
}

func buildFulfillmentGateway(cfg config.Config, logger *log.Logger) portsout.InventoryFulfillmentGateway {
	if cfg.FulfillmentWebhookURL == "" {
		return webhook.NewLogGateway(logger)
	}
	return webhook.NewGateway(webhook.Config{
		URL:        cfg.FulfillmentWebhookURL,
		HMACSecret: cfg.FulfillmentWebhookHMACSecret,
		Timeout:    cfg.FulfillmentWebhookTimeout,
	}, nil, logger)
}

func workerSettings(worker config.WorkerConfig) scheduler.Settings {
	return scheduler.Settings{
		Enabled:      worker.Enabled,
		Interval:     worker.Interval,
		InitialDelay: worker.InitialDelay,
	}
}
