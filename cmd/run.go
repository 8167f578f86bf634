package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"walletbot/bot"
	"walletbot/config"
	"walletbot/database"
	"walletbot/events"
	"walletbot/gameclock"
	"walletbot/repository"
	"walletbot/server"
	"walletbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting wallet bot...")

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
	registerAuditLogger(eventBus)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize game clock
	log.Println("Connecting to redis...")
	clock, err := gameclock.New(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to initialize game clock: %w", err)
	}

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory)
	conversationService := service.NewConversationService(uowFactory, cfg)
	adminService := service.NewAdminService(uowFactory)
	bettingService := service.NewBettingService(uowFactory, clock)
	log.Println("Services initialized successfully")

	// Initialize Telegram bot
	log.Println("Initializing Telegram bot...")
	telegramBot, err := bot.New(cfg, conversationService, adminService)
	if err != nil {
		return fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Println("Telegram bot initialized successfully")

	// Initialize HTTP API
	httpServer := server.New(cfg, userService, bettingService, clock)

	// Start the long-running pieces
	go func() {
		if err := clock.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Game clock error: %v", err)
		}
	}()
	go func() {
		if err := telegramBot.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("Telegram bot error: %v", err)
		}
	}()
	go func() {
		if err := httpServer.Listen(); err != nil {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down...")

	if err := httpServer.Shutdown(); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}
	if err := clock.Close(); err != nil {
		log.Printf("Error closing game clock: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
