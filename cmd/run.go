package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"bloop/bot"
	"bloop/config"
	"bloop/database"
	"bloop/events"
	"bloop/health"
	"bloop/repository"
	"bloop/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting bloop bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	log.Println("Initializing services...")
	rng := service.NewTimeSeededRand()
	services := bot.Services{
		Economy:       service.NewEconomyService(uowFactory, rng),
		Wager:         service.NewWagerService(uowFactory, rng),
		Blackjack:     service.NewBlackjackService(uowFactory, rng),
		Dice:          service.NewDiceService(uowFactory, rng, eventBus),
		TicTacToe:     service.NewTicTacToeService(uowFactory),
		GuildSettings: service.NewGuildSettingsService(uowFactory),
		Loan:          service.NewLoanService(uowFactory),
	}
	log.Println("Services initialized successfully")

	// Start the keep-alive endpoint
	healthServer := health.New(cfg.HealthPort)
	go healthServer.Start()

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, services, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down health endpoint: %v", err)
	}

	log.Println("Closing database connection...")
	db.Close()

	log.Println("Shutdown completed")
	return nil
}
