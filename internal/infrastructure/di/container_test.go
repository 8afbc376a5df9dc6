//go:build !integration

package di

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"hdpay/internal/adapters/outbound/fulfillment/webhook"
	"hdpay/internal/adapters/outbound/persistence/shared"
	"hdpay/internal/application/dto"
	"hdpay/internal/infrastructure/config"
	"hdpay/internal/infrastructure/scheduler"
)

const testSeedPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testConfig(t *testing.T) config.Config {
	t.Helper()
	target, appErr := shared.ParseDatabaseURL("sqlite3://" + filepath.Join(t.TempDir(), "hdpay.db"))
	if appErr != nil {
		t.Fatalf("expected sqlite target, got %v", appErr)
	}
	return config.Config{
		Port:                     "0",
		Database:                 target,
		DBReadinessTimeout:       time.Second,
		DBReadinessRetryInterval: 10 * time.Millisecond,
		SeedPhrase:               testSeedPhrase,
		PaymentWindow:            time.Hour,
		PurchaseServiceFee:       50,
		TopUpServiceFee:          25,
		MaxTopUp:                 500000,
		PaymentCheckWorker:       config.WorkerConfig{Enabled: true, Interval: time.Minute, BatchSize: 100},
		FinalizeWorker:           config.WorkerConfig{Enabled: true, Interval: time.Minute, BatchSize: 20},
		ExpireWorker:             config.WorkerConfig{Enabled: false, Interval: time.Minute, BatchSize: 100},
	}
}

func TestBuildServerWiresWorkersAndPersistence(t *testing.T) {
	cfg := testConfig(t)
	container, err := BuildServer(cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer container.Database.Close()

	if container.Server == nil {
		t.Fatalf("expected http server")
	}

	names := []string{}
	for _, worker := range container.Workers() {
		names = append(names, worker.Name())
	}
	expected := []string{scheduler.PaymentCheckWorkerName, scheduler.FinalizeWorkerName, scheduler.ExpireWorkerName}
	for i := range expected {
		if names[i] != expected[i] {
			t.Fatalf("expected worker %s at %d, got %v", expected[i], i, names)
		}
	}
	if container.ExpireWorker.Enabled() {
		t.Fatalf("expected expire worker to follow config and stay disabled")
	}

	persistence, appErr := container.InitializePersistenceUseCase.Execute(context.Background(), dto.InitializePersistenceCommand{
		ReadinessTimeout:       cfg.DBReadinessTimeout,
		ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
	})
	if appErr != nil {
		t.Fatalf("expected persistence to initialize, got %v", appErr)
	}
	if len(persistence.SeededCoins) != 3 {
		t.Fatalf("expected three seeded hd counters, got %v", persistence.SeededCoins)
	}

	health, appErr := container.GetHealthUseCase.Execute(context.Background(), dto.GetHealthCommand{})
	if appErr != nil {
		t.Fatalf("expected health output, got %v", appErr)
	}
	if health.Status != "ok" {
		t.Fatalf("expected ok health, got %+v", health)
	}

	_, appErr = container.GetInvoiceUseCase.Execute(context.Background(), dto.GetInvoiceQuery{TransactionID: "tx_missing"})
	if appErr == nil || appErr.Type != "not_found" {
		t.Fatalf("expected not_found for unknown transaction, got %v", appErr)
	}
}

func TestBuildApplicationRejectsBadSeed(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedPhrase = "abandon abandon abandon"

	if _, err := BuildApplication(cfg, nil); err == nil {
		t.Fatalf("expected error for invalid seed phrase")
	}
}

func TestBuildFulfillmentGatewayChoosesImplementation(t *testing.T) {
	cfg := testConfig(t)

	if _, ok := buildFulfillmentGateway(cfg, nil).(*webhook.LogGateway); !ok {
		t.Fatalf("expected log gateway without webhook url")
	}

	cfg.FulfillmentWebhookURL = "https://shop.example/hooks/release"
	cfg.FulfillmentWebhookHMACSecret = "secret"
	if _, ok := buildFulfillmentGateway(cfg, nil).(*webhook.Gateway); !ok {
		t.Fatalf("expected signed webhook gateway")
	}
}
