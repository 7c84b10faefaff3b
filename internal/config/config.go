package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress    string
	DatabaseURI   string
	SessionSecret string

	RedisAddress string
	KafkaBrokers []string
	KafkaTopic   string

	CardAPIBase       string
	CardAPIKey        string
	CardWebhookSecret string

	WalletAPIBase       string
	WalletClientID      string
	WalletClientSecret  string
	WalletWebhookID     string
	WalletCertHost      string
	WalletTrustRootPath string

	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration
	ReconcileBatch    int
	WorkerPoolSize    int
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultSessionSecret     = "change-me-in-production"
	defaultKafkaTopic        = "order-notifications"
	defaultWalletCertHost    = "api.walletpay.example"
	defaultReconcileInterval = 1 * time.Minute
	defaultReconcileGrace    = 15 * time.Minute
	defaultReconcileBatch    = 32
	defaultWorkerPoolSize    = 4
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		SessionSecret:       getString(lookup, "SESSION_SECRET", defaultSessionSecret),
		RedisAddress:        getString(lookup, "REDIS_ADDRESS", ""),
		KafkaTopic:          getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		CardAPIBase:         getString(lookup, "CARDPAY_API_BASE", ""),
		CardAPIKey:          getString(lookup, "CARDPAY_API_KEY", ""),
		CardWebhookSecret:   getString(lookup, "CARDPAY_WEBHOOK_SECRET", ""),
		WalletAPIBase:       getString(lookup, "WALLETPAY_API_BASE", ""),
		WalletClientID:      getString(lookup, "WALLETPAY_CLIENT_ID", ""),
		WalletClientSecret:  getString(lookup, "WALLETPAY_CLIENT_SECRET", ""),
		WalletWebhookID:     getString(lookup, "WALLETPAY_WEBHOOK_ID", ""),
		WalletCertHost:      getString(lookup, "WALLETPAY_CERT_HOST", defaultWalletCertHost),
		WalletTrustRootPath: getString(lookup, "WALLETPAY_TRUST_ROOT", ""),
		ReconcileInterval:   getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileGrace:      getDuration(lookup, "RECONCILE_GRACE", defaultReconcileGrace),
		ReconcileBatch:      getInt(lookup, "RECONCILE_BATCH", defaultReconcileBatch),
		WorkerPoolSize:      getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	if brokers, ok := lookup("KAFKA_BROKERS"); ok && brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}

	fs := flag.NewFlagSet("settlement", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		reconcileGraceStr    = cfg.ReconcileGrace.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
		kafkaBrokersStr      = strings.Join(cfg.KafkaBrokers, ",")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.RedisAddress, "redis", cfg.RedisAddress, "Redis address for webhook dedup cache")
	fs.StringVar(&kafkaBrokersStr, "kafka-brokers", kafkaBrokersStr, "Comma separated kafka broker list")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for settlement notifications")
	fs.StringVar(&cfg.CardAPIBase, "cardpay-base", cfg.CardAPIBase, "Card provider API base URL")
	fs.StringVar(&cfg.WalletAPIBase, "walletpay-base", cfg.WalletAPIBase, "Wallet provider API base URL")
	fs.StringVar(&cfg.WalletTrustRootPath, "walletpay-trust-root", cfg.WalletTrustRootPath, "Path to wallet provider trust root PEM")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent reconciliation workers")
	fs.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum orders per reconciliation batch")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between reconciliation passes")
	fs.StringVar(&reconcileGraceStr, "reconcile-grace", reconcileGraceStr, "Age before a pending order is reconciled")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ReconcileGrace, err = time.ParseDuration(reconcileGraceStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile grace: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	cfg.KafkaBrokers = splitList(kafkaBrokersStr)

	if secretFile, ok := lookup("SESSION_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read session secret file: %w", err)
		}
		cfg.SessionSecret = string(content)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ReconcileGrace <= 0 {
		cfg.ReconcileGrace = defaultReconcileGrace
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.CardAPIBase == "" || cfg.CardAPIKey == "" || cfg.CardWebhookSecret == "" {
		return nil, fmt.Errorf("card provider credentials must be provided")
	}

	if cfg.WalletAPIBase == "" || cfg.WalletClientID == "" || cfg.WalletClientSecret == "" {
		return nil, fmt.Errorf("wallet provider credentials must be provided")
	}

	if cfg.WalletWebhookID == "" || cfg.WalletTrustRootPath == "" {
		return nil, fmt.Errorf("wallet webhook verification settings must be provided")
	}

	return cfg, nil
}

func splitList(value string) []string {
	var result []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
