package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// Health endpoint
	HealthPort int

	// Economy configuration
	DefaultCurrencyName string
	DailyAmount         int64
	DailyCooldown       time.Duration
	RandomMoneyMax      int64
	RandomMoneyCooldown time.Duration

	// Game configuration
	GambleCooldown   time.Duration // shared throttle for coin flip and blackjack
	JoinWindow       time.Duration // dice pot join window
	MatchExpiry      time.Duration // tic-tac-toe idle lifetime
	BlackjackExpiry  time.Duration // blackjack idle lifetime
	TicTacToeReward  int64

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults matching the original Bloop tunables
		HealthPort:          10000,
		DefaultCurrencyName: "Bloop Coins",
		DailyAmount:         100,
		DailyCooldown:       24 * time.Hour,
		RandomMoneyMax:      50,
		RandomMoneyCooldown: 2 * time.Minute,
		GambleCooldown:      5 * time.Second,
		JoinWindow:          25 * time.Second,
		MatchExpiry:         2 * time.Minute,
		BlackjackExpiry:     time.Minute,
		TicTacToeReward:     25,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if port := os.Getenv("PORT"); port != "" {
		if parsedPort, err := strconv.Atoi(port); err == nil {
			config.HealthPort = parsedPort
		}
	}
	if amount := os.Getenv("DAILY_AMOUNT"); amount != "" {
		if parsedAmount, err := strconv.ParseInt(amount, 10, 64); err == nil {
			config.DailyAmount = parsedAmount
		}
	}
	if window := os.Getenv("JOIN_WINDOW_SECONDS"); window != "" {
		if parsedWindow, err := strconv.Atoi(window); err == nil {
			config.JoinWindow = time.Duration(parsedWindow) * time.Second
		}
	}
	if reward := os.Getenv("TTT_REWARD"); reward != "" {
		if parsedReward, err := strconv.ParseInt(reward, 10, 64); err == nil {
			config.TicTacToeReward = parsedReward
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
