package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/agencykit/contractd/internal/config"
	"github.com/agencykit/contractd/internal/database"
	"github.com/agencykit/contractd/internal/handlers"
	"github.com/agencykit/contractd/internal/middleware"
	"github.com/agencykit/contractd/internal/services"
	"github.com/agencykit/contractd/internal/types"

	_ "github.com/agencykit/contractd/docs/api" // Swagger docs
)

// @title Contractd API
// @version 1.0.0
// @description Contract assembly and part library data service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/agencykit/contractd
// @contact.email dev@agencykit.io

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the default part library
	if cfg.SeedPartLibrary {
		if err := database.SeedPartLibrary(db); err != nil {
			log.Fatalf("Failed to seed part library: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("contractd")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	partsHandler := &handlers.PartsHandler{DB: db}
	contractsHandler := &handlers.ContractsHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}

	// Health (public)
	api.Get("/health", healthHandler.GetHealth)

	// Part library routes (public GET, user POST)
	api.Get("/parts", partsHandler.GetParts)
	api.Post("/parts", middleware.AuthUser(), partsHandler.CreatePart)
	api.Delete("/parts/:id", middleware.AuthAdmin(), partsHandler.DeletePart)

	// Contract routes (all require user authentication)
	api.Post("/contracts", middleware.AuthUser(), contractsHandler.CreateContract)
	api.Get("/contracts/:id", middleware.AuthUser(), contractsHandler.GetContract)
	api.Post("/contracts/:id/compile", middleware.AuthUser(), contractsHandler.CompileContract)
	api.Post("/contracts/:id", middleware.AuthUser(), contractsHandler.SaveContract)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Initialize the Authorizer client up front; auth middleware rejects
	// requests until this succeeds on a later health check.
	if err := services.InitAuthorizer(cfg, "http", "localhost:"+cfg.Port); err != nil {
		log.Printf("Authorizer initialization failed (auth routes unavailable): %v", err)
	}

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Check for typed middleware errors (authorization failures)
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
