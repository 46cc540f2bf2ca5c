package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"coinflip/database"
	"coinflip/domain/entities"
)

// Outcome derivation modes
const (
	OutcomeDerivationHashed = "hashed"
	OutcomeDerivationRaw    = "raw"
)

// Event sinks
const (
	EventSinkNATS  = "nats"
	EventSinkKafka = "kafka"
	EventSinkNoop  = "noop"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL      string
	DatabaseName     string
	DatabaseMaxConns int32

	// Settlement configuration
	TreasuryID           int64
	DisputeDelayEpochs   int64         // Epochs a wager must stay open before it can be forfeited
	EpochDuration        time.Duration // Wall-clock length of one epoch for the ticker
	OutcomeDerivation    string        // "hashed" or "raw"
	FeeBasis             entities.FeeBasis
	DiscountCollectionID string // Collection whose items select the discount fee tier

	// House automation
	HouseSigningKey       []byte // BLS private key; enables the house resolver when set
	HouseResolverInterval time.Duration
	ForfeitSweepInterval  time.Duration

	// HTTP configuration
	HTTPAddr string

	// Event configuration
	EventSink    string
	NATSServers  string // NATS server addresses (comma-separated)
	KafkaBrokers []string
	KafkaTopic   string

	// Ownership cache
	RedisAddr         string
	OwnershipCacheTTL time.Duration

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelServiceName          string
	OTelExporterType         string // "console", "otlp", "prometheus" or "none"
	OTelOTLPEndpoint         string
	OTelExportIntervalMillis int
	MetricsAddr              string

	// Logging
	LogLevel  string
	LogFormat string // "json" or "text"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads configuration from the environment without touching the singleton
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// HouseResolverEnabled reports whether this process holds the house signing key
func (c *Config) HouseResolverEnabled() bool {
	return len(c.HouseSigningKey) > 0
}

func load() (*Config, error) {
	config := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		TreasuryID:           1,
		DisputeDelayEpochs:   7,
		EpochDuration:        24 * time.Hour,
		OutcomeDerivation:    getEnvWithDefault("OUTCOME_DERIVATION", OutcomeDerivationHashed),
		FeeBasis:             entities.FeeBasis(getEnvWithDefault("FEE_BASIS", string(entities.FeeBasisPlayerStake))),
		DiscountCollectionID: os.Getenv("DISCOUNT_COLLECTION_ID"),

		HouseResolverInterval: 5 * time.Second,
		ForfeitSweepInterval:  time.Minute,

		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		EventSink:   getEnvWithDefault("EVENT_SINK", EventSinkNATS),
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		KafkaTopic:  getEnvWithDefault("KAFKA_TOPIC", "coinflip.events"),

		RedisAddr:         os.Getenv("REDIS_ADDR"),
		OwnershipCacheTTL: 5 * time.Minute,

		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "coinflip"),
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "prometheus"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelExportIntervalMillis: 30000,
		MetricsAddr:              getEnvWithDefault("METRICS_ADDR", ":9090"),

		LogLevel:  getEnvWithDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvWithDefault("LOG_FORMAT", "text"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	var err error
	if config.TreasuryID, err = getInt64("TREASURY_ID", config.TreasuryID); err != nil {
		return nil, err
	}
	if config.DisputeDelayEpochs, err = getInt64("DISPUTE_DELAY_EPOCHS", config.DisputeDelayEpochs); err != nil {
		return nil, err
	}
	if config.EpochDuration, err = getDuration("EPOCH_DURATION", config.EpochDuration); err != nil {
		return nil, err
	}
	if config.HouseResolverInterval, err = getDuration("HOUSE_RESOLVER_INTERVAL", config.HouseResolverInterval); err != nil {
		return nil, err
	}
	if config.ForfeitSweepInterval, err = getDuration("FORFEIT_SWEEP_INTERVAL", config.ForfeitSweepInterval); err != nil {
		return nil, err
	}
	if config.OwnershipCacheTTL, err = getDuration("OWNERSHIP_CACHE_TTL", config.OwnershipCacheTTL); err != nil {
		return nil, err
	}

	if maxConns := os.Getenv("DATABASE_MAX_CONNS"); maxConns != "" {
		if parsed, err := strconv.ParseInt(maxConns, 10, 32); err == nil {
			config.DatabaseMaxConns = int32(parsed)
		}
	}
	if interval := os.Getenv("OTEL_EXPORT_INTERVAL_MS"); interval != "" {
		if parsed, err := strconv.Atoi(interval); err == nil {
			config.OTelExportIntervalMillis = parsed
		}
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			broker = strings.TrimSpace(broker)
			if broker != "" {
				config.KafkaBrokers = append(config.KafkaBrokers, broker)
			}
		}
	}

	if signingKey := os.Getenv("HOUSE_SIGNING_KEY"); signingKey != "" {
		config.HouseSigningKey, err = hex.DecodeString(strings.TrimPrefix(signingKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("HOUSE_SIGNING_KEY must be hex encoded: %w", err)
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.DisputeDelayEpochs < 0 {
		return fmt.Errorf("DISPUTE_DELAY_EPOCHS cannot be negative")
	}
	if c.OutcomeDerivation != OutcomeDerivationHashed && c.OutcomeDerivation != OutcomeDerivationRaw {
		return fmt.Errorf("OUTCOME_DERIVATION must be %q or %q, got %q", OutcomeDerivationHashed, OutcomeDerivationRaw, c.OutcomeDerivation)
	}
	if !c.FeeBasis.IsValid() {
		return fmt.Errorf("FEE_BASIS must be %q or %q, got %q", entities.FeeBasisPlayerStake, entities.FeeBasisTotalStake, c.FeeBasis)
	}
	switch c.EventSink {
	case EventSinkNATS, EventSinkNoop:
	case EventSinkKafka:
		if len(c.KafkaBrokers) == 0 && c.Environment != "test" {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENT_SINK=kafka")
		}
	default:
		return fmt.Errorf("unknown EVENT_SINK %q", c.EventSink)
	}

	if c.Environment != "test" {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
		if c.DatabaseName != "" && strings.TrimSpace(c.DatabaseName) == "" {
			return fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if c.EpochDuration <= 0 {
			return fmt.Errorf("EPOCH_DURATION must be positive")
		}
	}

	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return parsed, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return parsed, nil
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:           "test",
		TreasuryID:            1,
		DisputeDelayEpochs:    7,
		EpochDuration:         time.Hour,
		OutcomeDerivation:     OutcomeDerivationHashed,
		FeeBasis:              entities.FeeBasisPlayerStake,
		HouseResolverInterval: time.Second,
		ForfeitSweepInterval:  time.Second,
		EventSink:             EventSinkNoop,
		OwnershipCacheTTL:     time.Minute,
		OTelServiceName:       "coinflip-test",
		OTelExporterType:      "none",
		LogLevel:              "debug",
		LogFormat:             "text",
	}
}
