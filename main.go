package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"med-field-force/bot"
	"med-field-force/config"
	"med-field-force/internal/handlers"
	"med-field-force/internal/insights"
	"med-field-force/internal/repository"
	"med-field-force/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded successfully (store: %s)", cfg.StoreBackend)

	// Create application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()
	}()

	blobs, closeStore, err := openBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer closeStore()

	// Initialize application dependencies
	app, deps, err := initApplication(ctx, cfg, blobs)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Initialize Telegram Bot
	if err := initBot(ctx, cfg, deps); err != nil {
		log.Printf("Warning: Failed to init Telegram Bot: %v", err)
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// openBlobStore connects the configured persistence backend
func openBlobStore(ctx context.Context, cfg *config.Config) (repository.BlobStore, func(), error) {
	noop := func() {}

	switch cfg.StoreBackend {
	case config.BackendMongo:
		store, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, noop, err
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				log.Printf("Mongo disconnect error: %v", err)
			}
		}, nil

	case config.BackendMySQL:
		store, err := repository.OpenMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case config.BackendMemory:
		log.Println("⚠️ Using in-memory store, nothing will be persisted")
		return repository.NewMemoryBlobStore(), noop, nil
	}

	return repository.NewPocketBaseBlobStore(cfg.PocketBaseURL, cfg.PocketBaseToken), noop, nil
}

// initApplication loads the collections and builds the HTTP app
func initApplication(ctx context.Context, cfg *config.Config, blobs repository.BlobStore) (*fiber.App, *bot.Services, error) {
	attendanceRepo := repository.NewAttendanceLog(blobs)
	salesRepo := repository.NewSalesLedger(blobs)
	leaveRepo := repository.NewLeaveBook(blobs)
	staffRepo := repository.NewStaffRoster(blobs)
	billRepo := repository.NewBillBook(blobs)
	accountRepo := repository.NewAccountBook(blobs)

	if err := repository.LoadAll(ctx, attendanceRepo, salesRepo, leaveRepo, staffRepo, billRepo, accountRepo); err != nil {
		return nil, nil, err
	}

	var photos repository.PhotoStore = repository.NewBlobPhotoStore(blobs)
	if cfg.S3.Bucket != "" {
		s3Store, err := repository.NewS3PhotoStore(cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		photos = s3Store
		log.Printf("📷 Attendance photos go to s3://%s", cfg.S3.Bucket)
	}

	// Create bot notifier wrapper
	botNotifier := bot.NewNotifier()
	secret := []byte(cfg.JWTSecret)

	// Initialize services
	staffService := services.NewStaffService(staffRepo, botNotifier)
	dashboardService := services.NewDashboardService(staffRepo, attendanceRepo, salesRepo, leaveRepo)
	limiter := services.NewLoginLimiter(5, 15*time.Minute, time.Hour)

	h := handlers.New(handlers.Deps{
		Auth:           services.NewAuthService(accountRepo, staffRepo, limiter, secret).AllowManagerPhones(cfg.ManagerPhones...),
		Attendance:     services.NewAttendanceService(attendanceRepo, staffRepo, photos, botNotifier, cfg.Attendance),
		Billing:        services.NewBillingService(billRepo, salesRepo, staffRepo, botNotifier),
		Staff:          staffService,
		Leaves:         services.NewLeaveService(leaveRepo, staffRepo, botNotifier),
		Dashboard:      dashboardService,
		Insights:       services.NewInsightService(salesRepo, staffRepo, insights.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)),
		Sales:          salesRepo,
		CaptureTimeout: cfg.CaptureTimeout,
	})

	app := fiber.New(fiber.Config{
		AppName:      "Elder Field Force",
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${latency} ${method} ${path}\n",
	}))
	h.Register(app, secret)

	return app, &bot.Services{Staff: staffService, Dashboard: dashboardService, Sales: salesRepo}, nil
}

// initBot initializes the Telegram bot
func initBot(ctx context.Context, cfg *config.Config, deps *bot.Services) error {
	if cfg.TelegramBotToken == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, bot disabled")
		return nil
	}
	if err := bot.Init(cfg.TelegramBotToken, cfg.AuthorizedChatID); err != nil {
		return err
	}

	bot.SetServices(deps)
	bot.StartPolling(ctx)

	log.Println("Telegram Bot Initialized")
	return nil
}
