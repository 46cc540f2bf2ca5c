package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"coinflip/application"
	"coinflip/cmd"
	"coinflip/config"
	"coinflip/database"
	"coinflip/domain/services"
	"coinflip/infrastructure"
	"coinflip/infrastructure/crypto"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "keygen":
			handleKeygen()
			return
		case "simulate":
			if err := handleSimulate(); err != nil {
				log.Fatal("Simulation error: ", err)
			}
			return
		case "audit":
			if err := handleAudit(); err != nil {
				log.Fatal("Audit error: ", err)
			}
			return
		}
	}

	// Normal service operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: coinflip migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

// handleKeygen prints a fresh house key pair
func handleKeygen() {
	privateHex, publicHex := crypto.GenerateBLSSigner().KeyPairHex()
	fmt.Printf("HOUSE_SIGNING_KEY=%s\n", privateHex)
	fmt.Printf("VERIFICATION_KEY=%s\n", publicHex)
}

// handleAudit prints the conservation report for the configured treasury.
// The caller must be the house identity: coinflip audit <house-identity>
func handleAudit() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: coinflip audit <house-identity>")
	}

	ctx := context.Background()
	cfg := config.Get()
	cmd.ConfigureLogging(cfg)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Reports never publish events
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	treasury := application.NewTreasuryHandler(uowFactory, application.Dependencies{
		TreasuryID:         cfg.TreasuryID,
		DisputeDelayEpochs: cfg.DisputeDelayEpochs,
	})

	report, err := treasury.ConservationReport(ctx, os.Args[2])
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(map[string]any{
		"report":      report,
		"balanced":    report.IsBalanced(),
		"discrepancy": report.Discrepancy(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if !report.IsBalanced() {
		os.Exit(2)
	}
	return nil
}

// handleSimulate runs signed flips through both derivation modes: coinflip simulate [trials]
func handleSimulate() error {
	trials := 10000
	if len(os.Args) > 2 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: coinflip simulate [trials]")
		}
		trials = n
	}

	fmt.Println("=== Coin flip fairness simulation ===")
	failed := false
	for _, derivation := range []services.OutcomeDerivation{services.OutcomeDerivationHashed, services.OutcomeDerivationRaw} {
		report, err := cmd.SimulateFlips(derivation, trials)
		if err != nil {
			return err
		}
		fmt.Println(report)
		failed = failed || !report.WithinBound
	}

	if failed {
		os.Exit(1)
	}
	return nil
}
