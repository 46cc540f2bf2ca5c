package cmd

import (
	"context"
	"fmt"
	"os"

	"coinflip/application"
	"coinflip/config"
	"coinflip/database"
	"coinflip/domain/interfaces"
	"coinflip/infrastructure"
	"coinflip/repository"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured logrus level and format
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// newEventPublisher connects the configured event sink and returns its close function
func newEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, func(), error) {
	mapper := infrastructure.NewEventSubjectMapper()

	switch cfg.EventSink {
	case config.EventSinkNATS:
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		client := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := client.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher := infrastructure.NewNATSEventPublisher(client, mapper)
		if err := publisher.EnsureDomainEventStream(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to ensure event stream: %w", err)
		}
		return publisher, func() {
			if err := client.Close(); err != nil {
				log.WithError(err).Warn("Error closing NATS connection")
			}
		}, nil

	case config.EventSinkKafka:
		log.WithFields(log.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   cfg.KafkaTopic,
		}).Info("Publishing events to Kafka")
		publisher := infrastructure.NewKafkaEventPublisher(infrastructure.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), mapper)
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				log.WithError(err).Warn("Error closing Kafka writer")
			}
		}, nil

	default:
		log.Info("Event publishing disabled")
		return infrastructure.NewNoopEventPublisher(), func() {}, nil
	}
}

// wireOwnershipCache puts a redis cache in front of the qualifying item table
func wireOwnershipCache(ctx context.Context, cfg *config.Config, db *database.DB, deps *application.Dependencies) (func(), error) {
	rdb, err := infrastructure.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	cache := infrastructure.NewCachedOwnershipChecker(
		rdb,
		infrastructure.NewRepositoryOwnershipChecker(repository.NewQualifyingItemRepository(db)),
		cfg.OwnershipCacheTTL,
	)
	deps.OwnershipChecker = cache
	deps.OwnershipCache = cache

	log.WithFields(log.Fields{
		"addr": cfg.RedisAddr,
		"ttl":  cfg.OwnershipCacheTTL,
	}).Info("Ownership cache enabled")

	return func() {
		if err := rdb.Close(); err != nil {
			log.WithError(err).Warn("Error closing redis connection")
		}
	}, nil
}
