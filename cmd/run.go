package cmd

import (
	"context"
	"fmt"
	"time"

	"coinflip/api"
	"coinflip/application"
	"coinflip/config"
	"coinflip/database"
	"coinflip/domain/services"
	"coinflip/infrastructure"
	"coinflip/infrastructure/crypto"
	"coinflip/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the settlement service
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting coinflip...")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics := observability.GetMetrics()
	if cfg.OTelEnabled && cfg.OTelExporterType == "prometheus" {
		observability.StartMetricsServer(ctx, cfg.MetricsAddr, metrics)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnectionWithOptions(ctx, cfg.GetDatabaseURL(), database.PoolOptions{MaxConns: cfg.DatabaseMaxConns})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrationsWithURL(cfg.GetDatabaseURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database ready")

	// Initialize event sink
	publisher, closePublisher, err := newEventPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	// Initialize unit of work factory
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, publisher)
	application.RegisterMetricsHandlers(uowFactory, metrics)

	deps := application.Dependencies{
		TreasuryID:         cfg.TreasuryID,
		DisputeDelayEpochs: cfg.DisputeDelayEpochs,
		CollectionID:       cfg.DiscountCollectionID,
		Oracle: services.NewRandomnessOracle(
			crypto.NewBLSVerifier(),
			crypto.NewBlake2bDigester(),
			services.OutcomeDerivation(cfg.OutcomeDerivation),
		),
		ValidKey: crypto.ValidPublicKey,
	}

	// Initialize ownership cache
	if cfg.RedisAddr != "" {
		closeCache, err := wireOwnershipCache(ctx, cfg, db, &deps)
		if err != nil {
			return err
		}
		defer closeCache()
	}

	// Initialize handlers
	wagers := application.NewWagerHandler(uowFactory, deps)
	treasury := application.NewTreasuryHandler(uowFactory, deps)
	accounts := application.NewAccountHandler(uowFactory, deps)

	// Start background workers
	stopTicker := application.NewEpochTicker(uowFactory, deps).Start(ctx, cfg.EpochDuration)
	defer stopTicker()
	stopSweeper := application.NewForfeitSweeper(uowFactory, wagers, deps).Start(ctx, cfg.ForfeitSweepInterval)
	defer stopSweeper()

	if cfg.HouseResolverEnabled() {
		signer, err := crypto.NewBLSSigner(cfg.HouseSigningKey)
		if err != nil {
			return fmt.Errorf("failed to load house signing key: %w", err)
		}
		stopResolver := application.NewHouseResolverWorker(uowFactory, wagers, signer, deps).Start(ctx, cfg.HouseResolverInterval)
		defer stopResolver()
		log.Info("House resolver enabled")
	}

	// Start HTTP API
	server := api.NewServer(api.Handlers{
		Wagers:   wagers,
		Treasury: treasury,
		Accounts: accounts,
	}, api.Config{DisputeDelayEpochs: cfg.DisputeDelayEpochs})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(cfg.HTTPAddr)
	}()

	// Wait for context cancellation or a server failure
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Info("Shutting down coinflip...")
	if err := server.Shutdown(10 * time.Second); err != nil {
		log.WithError(err).Warn("HTTP server shutdown failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics shutdown failed")
	}

	log.Info("Shutdown completed")
	return nil
}
