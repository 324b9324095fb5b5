package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"coinbank/api"
	"coinbank/application"
	"coinbank/config"
	"coinbank/database"
	"coinbank/domain/services"
	"coinbank/repository"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting coinbank...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db)

	bonus := services.BonusConfig{
		RewardAmount: cfg.DailyRewardAmount,
		ResetHour:    cfg.DailyResetHour,
		ResetMinute:  cfg.DailyResetMinute,
		Location:     cfg.ResetLocation(),
	}

	ledger := application.NewLedger(
		uowFactory,
		repository.NewServerRepository(db),
		repository.NewAccountRepository(db),
		bonus,
	)
	registry := application.NewRegistry(uowFactory, repository.NewServerRepository(db))

	server := api.NewServer(cfg, ledger, registry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Printf("Server is running in %s mode...", cfg.Environment)

	select {
	case err := <-errCh:
		db.Close()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	// Cleanup resources
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
