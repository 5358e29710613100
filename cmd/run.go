package cmd

import (
	"context"
	"fmt"
	"time"

	"curator/bot"
	"curator/config"
	"curator/database"
	"curator/events"
	"curator/infrastructure"
	"curator/infrastructure/observability"
	"curator/registry"
	"curator/repository"
	"curator/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)
	log.Info("Starting curator bot...")

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Forward committed events to NATS when configured
	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled() {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers, "curator")
		if err := natsClient.Connect(ctx); err != nil {
			db.Close()
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if err := infrastructure.EnsureEventStream(natsClient); err != nil {
			natsClient.Close()
			db.Close()
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(natsClient, metrics).Attach(eventBus)
		log.Info("NATS event forwarding enabled")
	}

	// Initialize unit of work factory
	uowFactory := infrastructure.NewInstrumentedUnitOfWorkFactory(repository.NewUnitOfWorkFactory(db, eventBus), metrics)

	// Initialize services
	reg := registry.New()
	activityService := service.NewActivityService(uowFactory, eventBus, metrics)
	guildService := service.NewGuildService(reg, uowFactory, activityService, cfg.StartingBalance)
	userService := service.NewUserService(uowFactory)

	// Stakes of predictions interrupted by a crash are owed back before any
	// balance is loaded into memory
	if _, err := activityService.RefundOpenStakes(ctx); err != nil {
		if natsClient != nil {
			natsClient.Close()
		}
		db.Close()
		return fmt.Errorf("failed to refund open stakes: %w", err)
	}

	// Initialize Discord bot
	log.Info("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:              cfg.DiscordToken,
		GuildID:            cfg.GuildID,
		DefaultWinnerSlots: cfg.DefaultWinnerSlots,
	}
	discordBot, err := bot.New(botConfig, guildService, userService, activityService, metrics)
	if err != nil {
		if natsClient != nil {
			natsClient.Close()
		}
		db.Close()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized successfully")

	// Wait for context cancellation
	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	// Cleanup resources in reverse order
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Running activities do not survive a restart; cancel them so open stakes
	// are refunded while storage is still reachable
	guildService.ForgetAll(shutdownCtx)

	if natsClient != nil {
		if err := natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}

	log.Info("Closing database connection...")
	db.Close()

	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error flushing metrics")
	}

	log.Info("Shutdown completed")
	return nil
}
