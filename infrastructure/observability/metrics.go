package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"coinflip/config"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics for the settlement service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	registry      *prometheus.Registry
	initialized   bool
	mu            sync.RWMutex

	// Metric instruments
	wagersCreatedCounter       metric.Int64Counter
	wagersSettledCounter       metric.Int64Counter
	wagersOpenGauge            metric.Int64UpDownCounter
	proofRejectionsCounter     metric.Int64Counter
	feesCollectedCounter       metric.Int64Counter
	escrowOpenGauge            metric.Int64UpDownCounter
	eventsPublishedCounter     metric.Int64Counter
	eventsFailedCounter        metric.Int64Counter
	balanceTransactionsCounter metric.Int64Counter
	workerRunsCounter          metric.Int64Counter
	databaseQueriesCounter     metric.Int64Counter
	databaseQueryDurationHist  metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	// Create resource with service information
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	// Create appropriate reader based on config
	var reader sdkmetric.Reader
	switch mp.config.OTelExporterType {
	case "prometheus":
		mp.registry = prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(mp.registry))
		if err != nil {
			return fmt.Errorf("failed to create prometheus exporter: %w", err)
		}
		reader = exporter
		log.Info("Using prometheus metric exporter")

	case "console":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		reader = mp.periodicReader(exporter)
		log.Info("Using console metric exporter")

	case "otlp":
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err := otlpmetricgrpc.New(dialCtx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		reader = mp.periodicReader(exporter)
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	// Set as global meter provider
	otel.SetMeterProvider(mp.meterProvider)

	mp.meter = mp.meterProvider.Meter("coinflip")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

func (mp *MetricsProvider) periodicReader(exporter sdkmetric.Exporter) sdkmetric.Reader {
	return sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&mp.wagersCreatedCounter, WagersCreatedTotal, "Total number of wagers opened"},
		{&mp.wagersSettledCounter, WagersSettledTotal, "Total number of wagers resolved or forfeited"},
		{&mp.proofRejectionsCounter, ProofRejectionTotal, "Total number of resolve attempts with an invalid proof"},
		{&mp.feesCollectedCounter, FeesCollectedTotal, "Total fees credited to the fee pool"},
		{&mp.eventsPublishedCounter, EventsPublishedTotal, "Total number of domain events published"},
		{&mp.eventsFailedCounter, EventsFailedTotal, "Total number of domain events that failed to publish"},
		{&mp.balanceTransactionsCounter, BalanceTransactionsTotal, "Total number of ledger movements"},
		{&mp.workerRunsCounter, WorkerRunsTotal, "Total number of background worker passes"},
		{&mp.databaseQueriesCounter, DatabaseQueriesTotal, "Total number of database queries"},
	}
	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(c.name, metric.WithDescription(c.description), metric.WithUnit("1"))
		if err != nil {
			return fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
	}

	// Gauges use UpDownCounters
	mp.wagersOpenGauge, err = mp.meter.Int64UpDownCounter(
		WagersOpen,
		metric.WithDescription("Current number of open wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create wagers open gauge: %w", err)
	}

	mp.escrowOpenGauge, err = mp.meter.Int64UpDownCounter(
		EscrowOpen,
		metric.WithDescription("Stake currently held in open wagers"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create escrow gauge: %w", err)
	}

	mp.databaseQueryDurationHist, err = mp.meter.Float64Histogram(
		DatabaseQueryDuration,
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create database query duration histogram: %w", err)
	}

	return nil
}

// Registry returns the prometheus registry backing the exporter, or nil when
// another exporter is configured
func (mp *MetricsProvider) Registry() *prometheus.Registry {
	if mp == nil {
		return nil
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.registry
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp == nil {
		return nil
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RecordWagerCreated counts a new wager and adds its escrow to the open gauges
func (mp *MetricsProvider) RecordWagerCreated(totalStake int64, discounted bool) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.wagersCreatedCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.Bool("discounted", discounted)),
	)
	mp.wagersOpenGauge.Add(ctx, 1)
	mp.escrowOpenGauge.Add(ctx, totalStake)
}

// RecordWagerSettled counts a terminal transition and removes its escrow from the open gauges
func (mp *MetricsProvider) RecordWagerSettled(status string, won bool, stake, fee int64) {
	if !mp.isEnabled() {
		return
	}

	ctx := context.Background()
	mp.wagersSettledCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String(LabelStatus, status),
			attribute.String(LabelWon, strconv.FormatBool(won)),
		),
	)
	mp.wagersOpenGauge.Add(ctx, -1)
	mp.escrowOpenGauge.Add(ctx, -stake)
	if fee > 0 {
		mp.feesCollectedCounter.Add(ctx, fee)
	}
}

// RecordProofRejected counts a resolve attempt that failed verification
func (mp *MetricsProvider) RecordProofRejected() {
	if !mp.isEnabled() {
		return
	}
	mp.proofRejectionsCounter.Add(context.Background(), 1)
}

// RecordEventPublished records a domain event handed to the configured sink
func (mp *MetricsProvider) RecordEventPublished(sink, eventType string, err error) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelSink, sink),
		attribute.String(LabelEventType, eventType),
	)
	if err != nil {
		mp.eventsFailedCounter.Add(context.Background(), 1, attrs)
		return
	}
	mp.eventsPublishedCounter.Add(context.Background(), 1, attrs)
}

// RecordBalanceTransaction records a ledger movement
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelType, transactionType),
		),
	)
}

// RecordWorkerRun records one pass of a background worker
func (mp *MetricsProvider) RecordWorkerRun(worker, outcome string) {
	if !mp.isEnabled() {
		return
	}

	mp.workerRunsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelWorker, worker),
			attribute.String(LabelOutcome, outcome),
		),
	)
}

// RecordDatabaseQuery records a database query with duration
func (mp *MetricsProvider) RecordDatabaseQuery(repository, method string, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelRepository, repository),
		attribute.String(LabelMethod, method),
	)

	mp.databaseQueriesCounter.Add(context.Background(), 1, attrs)
	mp.databaseQueryDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// MeasureDatabaseQuery returns a function to measure database query duration
// Usage:
//
//	defer mp.MeasureDatabaseQuery("audit", "ConservationReport")()
func (mp *MetricsProvider) MeasureDatabaseQuery(repository, method string) func() {
	start := time.Now()
	return func() {
		mp.RecordDatabaseQuery(repository, method, time.Since(start))
	}
}

// isEnabled checks if metrics are enabled and instruments exist. A nil provider is disabled.
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.config.OTelEnabled && mp.meter != nil
}

// Global metrics provider instance
var (
	globalMetrics *MetricsProvider
	metricsOnce   sync.Once
)

// InitializeGlobalMetrics initializes the global metrics provider
func InitializeGlobalMetrics(ctx context.Context, cfg *config.Config) error {
	var err error
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsProvider(cfg)
		err = globalMetrics.Initialize(ctx)
	})
	return err
}

// GetMetrics returns the global metrics provider. It may be nil; every method tolerates that.
func GetMetrics() *MetricsProvider {
	return globalMetrics
}

// ShutdownGlobalMetrics shuts down the global metrics provider
func ShutdownGlobalMetrics(ctx context.Context) error {
	return globalMetrics.Shutdown(ctx)
}
