package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/evanvp/SoMapBack/internal/config"
	"github.com/evanvp/SoMapBack/internal/database"
	"github.com/evanvp/SoMapBack/internal/queue"
	"github.com/evanvp/SoMapBack/internal/repository"
	"github.com/evanvp/SoMapBack/internal/routes"
	"github.com/evanvp/SoMapBack/internal/services"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if err := database.ConnectDB(cfg.DBUrl, int32(cfg.DBMaxConns), int32(cfg.DBMinConns)); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	// 3. Redis (presence cache + notification queue); optional in dev
	var redisClient *redis.Client
	var notifier *queue.Notifier
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		notifier, err = queue.NewNotifier(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to create notifier: %v", err)
		}
		defer notifier.Close()
	} else {
		log.Println("REDIS_URL not set; presence cache and notifications disabled")
	}

	presenceService := services.NewPresenceService(
		repository.NewUserRepository(database.DB),
		redisClient,
		time.Duration(cfg.PresenceTTLSeconds)*time.Second,
	)

	// 4. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	routes.RegisterRoutes(app, cfg, database.DB, presenceService, notifier)

	// 5. Stale-presence sweeper
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		swept, err := presenceService.SweepStale(ctx)
		if err != nil {
			log.Printf("presence sweep failed: %v", err)
			return
		}
		if swept > 0 {
			log.Printf("presence sweep marked %d users offline", swept)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule presence sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// 6. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
