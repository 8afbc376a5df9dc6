package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"hdpay/internal/adapters/outbound/persistence/shared"
	"hdpay/internal/adapters/outbound/wallet/hd"
	valueobjects "hdpay/internal/domain/value_objects"

	"github.com/joho/godotenv"
)

const (
	defaultPort                     = "8080"
	defaultOpenAPISpec              = "api/openapi.yaml"
	defaultShutdownTimeout          = 10 * time.Second
	defaultDBReadinessTimeout       = 30 * time.Second
	defaultDBReadinessRetryInterval = 2 * time.Second
	defaultPaymentWindow            = 60 * time.Minute
	defaultBlockstreamAPIURL        = "https://blockstream.info/api"
	defaultBlockCypherAPIURL        = "https://api.blockcypher.com/v1/ltc/main"
	defaultTronGridAPIURL           = "https://api.trongrid.io"
	defaultUSDTContractAddress      = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
	defaultBlockchainAPITimeout     = 15 * time.Second
	defaultBlockchainAPICallDelay   = 2 * time.Second
	defaultCoinGeckoAPIURL          = "https://api.coingecko.com/api/v3"
	defaultExchangeRateTimeout      = 10 * time.Second
	defaultExchangeRateCacheTTL     = 5 * time.Minute
	defaultPurchaseServiceFee       = "0.50"
	defaultTopUpServiceFee          = "0.25"
	defaultMaxTopUp                 = "5000"
	defaultFulfillmentTimeout       = 5 * time.Second
	defaultLogFileMaxSizeMB         = 50
	defaultLogFileMaxBackups        = 5
	defaultLogFileMaxAgeDays        = 28
)

// DefaultEnvFile is loaded before the environment is read when present.
// Variables already set in the process environment win.
const DefaultEnvFile = ".env"

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type WorkerConfig struct {
	Enabled      bool
	Interval     time.Duration
	InitialDelay time.Duration
	BatchSize    int
}

type Config struct {
	Port                     string
	OpenAPISpecPath          string
	ShutdownTimeout          time.Duration
	Database                 shared.Target
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration

	SeedPhrase       string
	PaymentWindow    time.Duration
	MinConfirmations map[valueobjects.Coin]int

	BlockstreamAPIURL      string
	BlockCypherAPIURL      string
	BlockCypherAPIToken    string
	TronGridAPIURL         string
	TronGridAPIKey         string
	USDTContractAddress    string
	BlockchainAPITimeout   time.Duration
	BlockchainAPICallDelay time.Duration

	CoinGeckoAPIURL      string
	ExchangeRateTimeout  time.Duration
	ExchangeRateCacheTTL time.Duration

	PurchaseServiceFee valueobjects.FiatCents
	TopUpServiceFee    valueobjects.FiatCents
	MaxTopUp           valueobjects.FiatCents

	PaymentCheckWorker WorkerConfig
	FinalizeWorker     WorkerConfig
	ExpireWorker       WorkerConfig

	FulfillmentWebhookURL        string
	FulfillmentWebhookHMACSecret string
	FulfillmentWebhookTimeout    time.Duration

	LogFile           string
	LogFileMaxSizeMB  int
	LogFileMaxBackups int
	LogFileMaxAgeDays int
}

func LoadConfig() (Config, *ConfigError) {
	if cfgErr := LoadEnvFile(DefaultEnvFile); cfgErr != nil {
		return Config{}, cfgErr
	}

	rawDatabaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if rawDatabaseURL == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_DATABASE_URL_REQUIRED",
			Message: "DATABASE_URL is required",
		}
	}
	database, appErr := shared.ParseDatabaseURL(rawDatabaseURL)
	if appErr != nil {
		return Config{}, &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL must use postgres, postgresql or sqlite3 scheme",
		}
	}

	seedPhrase, cfgErr := LoadSeedPhrase()
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	cfg := Config{
		Port:                         envString("PORT", defaultPort),
		OpenAPISpecPath:              envString("OPENAPI_SPEC_PATH", defaultOpenAPISpec),
		Database:                     database,
		SeedPhrase:                   seedPhrase,
		MinConfirmations:             map[valueobjects.Coin]int{},
		BlockstreamAPIURL:            envString("BLOCKSTREAM_API_URL", defaultBlockstreamAPIURL),
		BlockCypherAPIURL:            envString("BLOCKCYPHER_API_URL", defaultBlockCypherAPIURL),
		BlockCypherAPIToken:          envString("BLOCKCYPHER_API_TOKEN", ""),
		TronGridAPIURL:               envString("TRONGRID_API_URL", defaultTronGridAPIURL),
		TronGridAPIKey:               envString("TRONGRID_API_KEY", ""),
		USDTContractAddress:          envString("USDT_TRC20_CONTRACT_ADDRESS", defaultUSDTContractAddress),
		CoinGeckoAPIURL:              envString("COINGECKO_API_URL", defaultCoinGeckoAPIURL),
		FulfillmentWebhookURL:        envString("FULFILLMENT_WEBHOOK_URL", ""),
		FulfillmentWebhookHMACSecret: envString("FULFILLMENT_WEBHOOK_HMAC_SECRET", ""),
		LogFile:                      envString("LOG_FILE", ""),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		target   *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", defaultShutdownTimeout, &cfg.ShutdownTimeout},
		{"DB_READINESS_TIMEOUT", defaultDBReadinessTimeout, &cfg.DBReadinessTimeout},
		{"DB_READINESS_RETRY_INTERVAL", defaultDBReadinessRetryInterval, &cfg.DBReadinessRetryInterval},
		{"PAYMENT_WINDOW", defaultPaymentWindow, &cfg.PaymentWindow},
		{"BLOCKCHAIN_API_TIMEOUT", defaultBlockchainAPITimeout, &cfg.BlockchainAPITimeout},
		{"BLOCKCHAIN_API_CALL_DELAY", defaultBlockchainAPICallDelay, &cfg.BlockchainAPICallDelay},
		{"EXCHANGE_RATE_TIMEOUT", defaultExchangeRateTimeout, &cfg.ExchangeRateTimeout},
		{"EXCHANGE_RATE_CACHE_TTL", defaultExchangeRateCacheTTL, &cfg.ExchangeRateCacheTTL},
		{"FULFILLMENT_WEBHOOK_TIMEOUT", defaultFulfillmentTimeout, &cfg.FulfillmentWebhookTimeout},
	}
	for _, entry := range durations {
		value, cfgErr := envDuration(entry.key, entry.fallback)
		if cfgErr != nil {
			return Config{}, cfgErr
		}
		*entry.target = value
	}
	if cfg.PaymentWindow <= 0 {
		return Config{}, invalidValue("PAYMENT_WINDOW", "must be greater than zero")
	}
	if cfg.BlockchainAPICallDelay < 0 {
		return Config{}, invalidValue("BLOCKCHAIN_API_CALL_DELAY", "must not be negative")
	}

	confirmationKeys := map[valueobjects.Coin]string{
		valueobjects.CoinBTC:     "MIN_CONFIRMATIONS_BTC",
		valueobjects.CoinLTC:     "MIN_CONFIRMATIONS_LTC",
		valueobjects.CoinUSDTTRX: "MIN_CONFIRMATIONS_TRX",
	}
	for coin, key := range confirmationKeys {
		spec, _ := coin.Spec()
		value, cfgErr := envInt(key, spec.DefaultMinConfirmations)
		if cfgErr != nil {
			return Config{}, cfgErr
		}
		if value < 1 {
			return Config{}, invalidValue(key, "must be at least 1")
		}
		cfg.MinConfirmations[coin] = value
	}

	fees := []struct {
		key      string
		fallback string
		target   *valueobjects.FiatCents
	}{
		{"SERVICE_FEE_EUR", defaultPurchaseServiceFee, &cfg.PurchaseServiceFee},
		{"ADD_BALANCE_SERVICE_FEE_EUR", defaultTopUpServiceFee, &cfg.TopUpServiceFee},
		{"MAX_TOPUP_EUR", defaultMaxTopUp, &cfg.MaxTopUp},
	}
	for _, entry := range fees {
		value, appErr := valueobjects.ParseFiatAmount(entry.key, envString(entry.key, entry.fallback))
		if appErr != nil {
			cfgErr := invalidValue(entry.key, "")
			cfgErr.Message = appErr.Message
			return Config{}, cfgErr
		}
		*entry.target = value
	}
	if cfg.MaxTopUp <= 0 {
		return Config{}, invalidValue("MAX_TOPUP_EUR", "must be greater than zero")
	}

	workers := []struct {
		prefix   string
		defaults WorkerConfig
		target   *WorkerConfig
	}{
		{"PAYMENT_CHECK_WORKER", WorkerConfig{Enabled: true, Interval: 120 * time.Second, InitialDelay: 30 * time.Second, BatchSize: 100}, &cfg.PaymentCheckWorker},
		{"FINALIZE_WORKER", WorkerConfig{Enabled: true, Interval: 60 * time.Second, InitialDelay: 15 * time.Second, BatchSize: 20}, &cfg.FinalizeWorker},
		{"EXPIRE_WORKER", WorkerConfig{Enabled: true, Interval: 300 * time.Second, InitialDelay: 60 * time.Second, BatchSize: 100}, &cfg.ExpireWorker},
	}
	for _, entry := range workers {
		worker, cfgErr := loadWorkerConfig(entry.prefix, entry.defaults)
		if cfgErr != nil {
			return Config{}, cfgErr
		}
		*entry.target = worker
	}

	if cfg.FulfillmentWebhookURL != "" && cfg.FulfillmentWebhookHMACSecret == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_FULFILLMENT_WEBHOOK_HMAC_SECRET_REQUIRED",
			Message: "FULFILLMENT_WEBHOOK_HMAC_SECRET is required when FULFILLMENT_WEBHOOK_URL is set",
		}
	}

	logInts := []struct {
		key      string
		fallback int
		target   *int
	}{
		{"LOG_FILE_MAX_SIZE_MB", defaultLogFileMaxSizeMB, &cfg.LogFileMaxSizeMB},
		{"LOG_FILE_MAX_BACKUPS", defaultLogFileMaxBackups, &cfg.LogFileMaxBackups},
		{"LOG_FILE_MAX_AGE_DAYS", defaultLogFileMaxAgeDays, &cfg.LogFileMaxAgeDays},
	}
	for _, entry := range logInts {
		value, cfgErr := envInt(entry.key, entry.fallback)
		if cfgErr != nil {
			return Config{}, cfgErr
		}
		*entry.target = value
	}

	return cfg, nil
}

// LoadSeedPhrase reads and validates SEED_PHRASE on its own, for commands
// that derive addresses without a database.
func LoadSeedPhrase() (string, *ConfigError) {
	seedPhrase := hd.NormalizeMnemonic(os.Getenv("SEED_PHRASE"))
	if seedPhrase == "" {
		return "", &ConfigError{
			Code:    "CONFIG_SEED_PHRASE_REQUIRED",
			Message: "SEED_PHRASE is required",
		}
	}
	if keyErr := hd.ValidateMnemonic(seedPhrase); keyErr != nil {
		// The phrase itself never goes into the error.
		return "", &ConfigError{
			Code:    "CONFIG_SEED_PHRASE_INVALID",
			Message: "SEED_PHRASE is not a valid BIP39 mnemonic",
			Metadata: map[string]string{
				"reason": string(keyErr.Code),
			},
		}
	}
	return seedPhrase, nil
}

// LoadEnvFile applies a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func LoadEnvFile(path string) *ConfigError {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &ConfigError{
			Code:    "CONFIG_ENV_FILE_INVALID",
			Message: "env file could not be loaded",
			Metadata: map[string]string{
				"path":  path,
				"error": err.Error(),
			},
		}
	}
	return nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func loadWorkerConfig(prefix string, defaults WorkerConfig) (WorkerConfig, *ConfigError) {
	enabled, cfgErr := envBool(prefix+"_ENABLED", defaults.Enabled)
	if cfgErr != nil {
		return WorkerConfig{}, cfgErr
	}
	interval, cfgErr := envDuration(prefix+"_INTERVAL", defaults.Interval)
	if cfgErr != nil {
		return WorkerConfig{}, cfgErr
	}
	if interval <= 0 {
		return WorkerConfig{}, invalidValue(prefix+"_INTERVAL", "must be greater than zero")
	}
	initialDelay, cfgErr := envDuration(prefix+"_INITIAL_DELAY", defaults.InitialDelay)
	if cfgErr != nil {
		return WorkerConfig{}, cfgErr
	}
	if initialDelay < 0 {
		return WorkerConfig{}, invalidValue(prefix+"_INITIAL_DELAY", "must not be negative")
	}
	batchSize, cfgErr := envInt(prefix+"_BATCH_SIZE", defaults.BatchSize)
	if cfgErr != nil {
		return WorkerConfig{}, cfgErr
	}
	if batchSize < 1 {
		return WorkerConfig{}, invalidValue(prefix+"_BATCH_SIZE", "must be at least 1")
	}

	return WorkerConfig{
		Enabled:      enabled,
		Interval:     interval,
		InitialDelay: initialDelay,
		BatchSize:    batchSize,
	}, nil
}

func envString(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) (time.Duration, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, invalidValue(key, "must be a duration such as 30s or 5m")
	}
	return value, nil
}

func envInt(key string, fallback int) (int, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidValue(key, "must be an integer")
	}
	return value, nil
}

func envBool(key string, fallback bool) (bool, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidValue(key, "must be a boolean")
	}
	return value, nil
}

func invalidValue(key string, reason string) *ConfigError {
	return &ConfigError{
		Code:    "CONFIG_" + key + "_INVALID",
		Message: key + " " + reason,
		Metadata: map[string]string{
			"variable": key,
		},
	}
}
