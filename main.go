// Package main provides the main entry point for the Kitsune campaign platform
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/Kitsune/app/handlers"
	"github.com/amirphl/Kitsune/app/router"
	"github.com/amirphl/Kitsune/app/scheduler"
	"github.com/amirphl/Kitsune/app/services"
	businessflow "github.com/amirphl/Kitsune/business_flow"
	"github.com/amirphl/Kitsune/config"
	"github.com/amirphl/Kitsune/models"
	"github.com/amirphl/Kitsune/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Kitsune application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.PhoneNumber{},
		&models.Personality{},
		&models.MessageTemplate{},
		&models.Campaign{},
		&models.Contact{},
		&models.ConversationEntry{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthCheckInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	phoneNumberRepo := repository.NewPhoneNumberRepository(db)
	personalityRepo := repository.NewPersonalityRepository(db)
	templateRepo := repository.NewMessageTemplateRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Initialize channel client
	var whatsappService services.WhatsAppService
	switch cfg.WhatsApp.ProviderDomain {
	case "mock":
		log.Println("Using mock WhatsApp service")
		whatsappService = services.NewMockWhatsAppService()
	default:
		whatsappService = services.NewWhatsAppService(&cfg.WhatsApp)
	}

	var historyCache businessflow.HistoryCache
	if rc != nil {
		historyCache = services.NewConversationCache(rc, cfg.Cache.ConversationTTL)
	}

	// Initialize flows
	dispatchFlow := businessflow.NewDispatchFlow(
		campaignRepo,
		phoneNumberRepo,
		templateRepo,
		contactRepo,
		whatsappService,
		historyCache,
		db,
		nil,
	)

	// Campaign scheduler: periodic re-dispatch plus activation-triggered runs
	campaignScheduler := scheduler.NewCampaignScheduler(
		campaignRepo,
		dispatchFlow,
		cfg.Scheduler.Interval,
		cfg.Scheduler.LogPath,
	)
	stopFuncs = append(stopFuncs, campaignScheduler.Start(context.Background()))

	conversationFlow := businessflow.NewConversationFlow(
		phoneNumberRepo,
		contactRepo,
		whatsappService,
		historyCache,
		db,
		nil,
	)

	// Route inbound channel messages into the conversation flow
	whatsappService.OnMessage(func(ctx context.Context, from, to, text string) error {
		_, err := conversationFlow.HandleInbound(ctx, &businessflow.InboundMessage{
			From: from,
			To:   to,
			Text: text,
		})
		return err
	})

	phoneNumberFlow := businessflow.NewPhoneNumberFlow(phoneNumberRepo, whatsappService, db)
	personalityFlow := businessflow.NewPersonalityFlow(personalityRepo, db)
	templateFlow := businessflow.NewMessageTemplateFlow(templateRepo, db)
	campaignFlow := businessflow.NewCampaignFlow(campaignRepo, personalityRepo, templateRepo, phoneNumberRepo, campaignScheduler, db)
	contactFlow := businessflow.NewContactFlow(contactRepo, db)

	// Initialize handlers
	phoneNumberHandler := handlers.NewPhoneNumberHandler(phoneNumberFlow)
	personalityHandler := handlers.NewPersonalityHandler(personalityFlow)
	templateHandler := handlers.NewMessageTemplateHandler(templateFlow)
	campaignHandler := handlers.NewCampaignHandler(campaignFlow)
	contactHandler := handlers.NewContactHandler(contactFlow)
	webhookHandler := handlers.NewWebhookHandler(whatsappService)

	// Initialize router
	fiberRouter := router.NewFiberRouter(
		cfg,
		phoneNumberHandler,
		personalityHandler,
		templateHandler,
		campaignHandler,
		contactHandler,
		webhookHandler,
	)

	return &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}, nil
}
