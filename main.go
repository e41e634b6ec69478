package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"educa/config"
	"educa/database"
	"educa/logger"
	authRoutes "educa/routers/authRoutes"
	courseRoutes "educa/routers/courseRoutes"
	studentRoutes "educa/routers/studentRoutes"
	superAdminRoutes "educa/routers/superAdmin"
	"educa/services"
	"educa/services/cache"
	"educa/services/catalog"
	"educa/services/embed"
	"educa/services/mailer"
	"educa/services/storage"
	"educa/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
)

func newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	if cfg.CacheBackend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, "educa:")
		if err == nil {
			return rc
		}
		logger.Log.Warn("Redis unavailable, using in-process cache", "addr", cfg.RedisAddr, "error", err)
	}
	mc, err := cache.NewMemoryCache(64 << 20)
	if err != nil {
		logger.Log.Fatal("Failed to create cache", "error", err)
	}
	return mc
}

func newStore(ctx context.Context, cfg *config.Config) storage.Store {
	if cfg.MediaBackend == "gcs" {
		gs, err := storage.NewGCSStore(ctx, cfg.GCSBucket)
		if err == nil {
			return gs
		}
		logger.Log.Warn("GCS unavailable, storing media on local disk", "bucket", cfg.GCSBucket, "error", err)
	}
	return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}

func newMailer(cfg *config.Config) mailer.Mailer {
	if cfg.SendgridAPIKey == "" {
		return mailer.LogMailer{}
	}
	return mailer.NewSendgrid(cfg.SendgridAPIKey, cfg.EmailSender)
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	if err := logger.Init(cfg.AppMode); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()

	database.ConnectDb()

	ctx := context.Background()
	appCache := newCache(ctx, cfg)
	defer appCache.Close()

	services.App = services.Registry{
		Store:   newStore(ctx, cfg),
		Catalog: catalog.New(appCache, cfg.CacheTTL),
		Embed:   embed.New(cfg.OEmbedEndpoint, 5*time.Second),
		Mailer:  newMailer(cfg),
	}

	scheduler, err := utils.InitializeCacheScheduler(cfg.CacheWarmSchedule, func(ctx context.Context) error {
		return services.App.Catalog.Warm(ctx, database.Database.Db)
	})
	if err != nil {
		logger.Log.Fatal("Invalid CACHE_WARM_SCHEDULE", "schedule", cfg.CacheWarmSchedule, "error", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Uploaded media on the local backend
	if local, ok := services.App.Store.(*storage.LocalStore); ok {
		app.Static(cfg.MediaURL, local.Root)
	}

	authRoutes.SetupAuthRoutes(app)
	studentRoutes.SetupStudentRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupManageRoutes(app)
	superAdminRoutes.SetupSuperAdminRoutes(app)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Log.Info("Shutting down")
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Log.Info("Server is running", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server stopped", "error", err)
	}
}
