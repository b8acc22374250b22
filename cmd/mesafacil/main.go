package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/CamiloVelandia/MesaFacil/app/controllers"
	"github.com/CamiloVelandia/MesaFacil/app/models"
	"github.com/CamiloVelandia/MesaFacil/app/repository"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/cache"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/checkout"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/database"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/env"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/realtime"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/router"
	"github.com/CamiloVelandia/MesaFacil/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/mesafacil to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		Views:     html.New(basePath+"views", ".html"),
		BodyLimit: 10485760, // 10 MiB, QR images are small
	})

	// ignore and cache favicon
	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// static files
	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	setupCheckout()
	setupStorage()

	// ROUTER
	router.InstallRouter(app)

	return app
}

// setupCheckout wires the checkout orchestrator and subscribes it to the
// billing config-change channel so admin edits on any instance invalidate
// open sessions everywhere.
func setupCheckout() {
	orchestrator := checkout.NewOrchestrator(checkout.NewStore(database.GetDB()), checkout.Options{
		BaseURL: env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000"),
		Sandbox: func() bool {
			return models.GetAppSettings().IsSandboxMode()
		},
	})
	controllers.SetOrchestrator(orchestrator)

	realtime.ListenConfigChanged(context.Background(), func(reason string) {
		orchestrator.HandleConfigChanged()
	})
}

// setupStorage initializes the S3 client for QR asset uploads when enabled
func setupStorage() {
	cfg, err := storage.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid storage configuration: %v", err)
	}
	if !cfg.IsEnabled() {
		log.Println("[Storage] object storage disabled, QR uploads unavailable")
		return
	}

	client, err := storage.NewClient(cfg)
	if err != nil {
		log.Fatalf("Could not initialize object storage: %v", err)
	}
	controllers.SetStorageClient(client)
}
