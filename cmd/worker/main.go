package main

import (
	"log"

	"github.com/hibiken/asynq"

	"github.com/evanvp/SoMapBack/internal/config"
	"github.com/evanvp/SoMapBack/internal/database"
	"github.com/evanvp/SoMapBack/internal/queue"
	"github.com/evanvp/SoMapBack/internal/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.DBUrl == "" {
		log.Fatal("DB_URL is required")
	}
	if cfg.RedisURL == "" {
		log.Fatal("REDIS_URL is required")
	}

	if err := database.ConnectDB(cfg.DBUrl, int32(cfg.DBMaxConns), int32(cfg.DBMinConns)); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB()

	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse redis url: %v", err)
	}

	server := asynq.NewServer(opt, asynq.Config{Concurrency: 5})

	notificationRepo := repository.NewNotificationRepository(database.DB)
	processor := queue.NewNotificationProcessor(notificationRepo)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeMessageNotification, processor.ProcessTask)

	log.Println("Worker starting")
	if err := server.Run(mux); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
