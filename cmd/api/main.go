package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/audience-voucher-system/internal/config"
	"github.com/fairyhunter13/audience-voucher-system/internal/handler"
	"github.com/fairyhunter13/audience-voucher-system/internal/repository"
	"github.com/fairyhunter13/audience-voucher-system/internal/service"
	"github.com/fairyhunter13/audience-voucher-system/internal/validator"
	"github.com/fairyhunter13/audience-voucher-system/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Audience Voucher System",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Initialize components (layered architecture)
	storeTimeout := cfg.DB.QueryTimeoutDuration()

	customerRepo := repository.NewCustomerRepository()
	segmentRepo := repository.NewSegmentRepository(pool)
	campaignRepo := repository.NewCampaignRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)

	issuer := service.NewVoucherIssuer(voucherRepo)
	segmentService := service.NewSegmentService(pool, segmentRepo, customerRepo, storeTimeout)
	campaignService := service.NewCampaignService(pool, campaignRepo, segmentRepo, voucherRepo, issuer, storeTimeout)

	segmentHandler := handler.NewSegmentHandler(segmentService, validate)
	campaignHandler := handler.NewCampaignHandler(campaignService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	// Segment routes
	app.Post("/api/segments", segmentHandler.CreateSegment)
	app.Get("/api/segments", segmentHandler.ListSegments)
	app.Get("/api/segments/:id", segmentHandler.GetSegment)
	app.Get("/api/segments/:id/members", segmentHandler.GetSegmentMembers)
	app.Put("/api/segments/:id", segmentHandler.UpdateSegment)
	app.Delete("/api/segments/:id", segmentHandler.DeleteSegment)

	// Campaign routes
	app.Post("/api/campaigns", campaignHandler.CreateCampaign)
	app.Get("/api/campaigns", campaignHandler.ListCampaigns)
	app.Get("/api/campaigns/:id", campaignHandler.GetCampaign)
	app.Delete("/api/campaigns/:id", campaignHandler.DeleteCampaign)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
