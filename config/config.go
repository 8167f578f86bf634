package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	_ "github.com/joho/godotenv/autoload"
)

// BankDetails are the static payout-receiving details shown to depositors
type BankDetails struct {
	HolderName    string
	BankName      string
	AccountNumber string
	IfscCode      string
	UpiID         string
}

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	BotToken    string
	AdminChatID int64

	// Database configuration
	DatabaseURL string

	// Redis configuration (game clock state)
	RedisURL string

	// HTTP API
	HTTPAddr string

	// Mini-game front end linked from the chat menu
	GameAppURL string

	// Wallet policy
	MinDepositAmount    int64
	MinWithdrawalAmount int64
	RolloverMultiplier  int64

	// Deposit destination shown to users
	Bank BankDetails

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
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		HTTPAddr:    ":8080",
		GameAppURL:  os.Getenv("GAME_APP_URL"),

		// Wallet policy defaults
		MinDepositAmount:    100,
		MinWithdrawalAmount: 500,
		RolloverMultiplier:  1,

		Bank: BankDetails{
			HolderName:    getEnv("BANK_HOLDER_NAME", "John Doe"),
			BankName:      getEnv("BANK_NAME", "State Bank of India"),
			AccountNumber: getEnv("BANK_ACCOUNT_NUMBER", "123456789012"),
			IfscCode:      getEnv("BANK_IFSC_CODE", "SBIN0001234"),
			UpiID:         getEnv("STATIC_UPI_ID", "yourstaticupi@bank"),
		},

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		config.HTTPAddr = addr
	}
	if adminID := os.Getenv("ADMIN_CHAT_ID"); adminID != "" {
		parsed, err := strconv.ParseInt(adminID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_CHAT_ID: %w", err)
		}
		config.AdminChatID = parsed
	}
	if minDeposit := os.Getenv("MIN_DEPOSIT_AMOUNT"); minDeposit != "" {
		if parsed, err := strconv.ParseInt(minDeposit, 10, 64); err == nil {
			config.MinDepositAmount = parsed
		}
	}
	if minWithdrawal := os.Getenv("MIN_WITHDRAWAL_AMOUNT"); minWithdrawal != "" {
		if parsed, err := strconv.ParseInt(minWithdrawal, 10, 64); err == nil {
			config.MinWithdrawalAmount = parsed
		}
	}
	if multiplier := os.Getenv("ROLLOVER_MULTIPLIER"); multiplier != "" {
		if parsed, err := strconv.ParseInt(multiplier, 10, 64); err == nil {
			config.RolloverMultiplier = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.BotToken == "" {
			return nil, fmt.Errorf("BOT_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.AdminChatID == 0 {
			return nil, fmt.Errorf("ADMIN_CHAT_ID is required")
		}
	}

	return config, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
