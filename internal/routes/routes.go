package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evanvp/SoMapBack/internal/config"
	"github.com/evanvp/SoMapBack/internal/handlers"
	"github.com/evanvp/SoMapBack/internal/middleware"
	"github.com/evanvp/SoMapBack/internal/queue"
	"github.com/evanvp/SoMapBack/internal/repository"
	"github.com/evanvp/SoMapBack/internal/services"
	chatws "github.com/evanvp/SoMapBack/internal/websocket"
)

func RegisterRoutes(
	app *fiber.App,
	cfg *config.Config,
	db *pgxpool.Pool,
	presenceService *services.PresenceService,
	notifier *queue.Notifier,
) {
	userRepo := repository.NewUserRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	directoryService := services.NewDirectoryService(userRepo)
	chatService := services.NewChatService(repository.NewChatStore(db), conversationRepo, messageRepo, userRepo)

	var offlineNotifier chatws.OfflineNotifier
	if notifier != nil {
		offlineNotifier = notifier
	}
	chatHub := chatws.NewHub(offlineNotifier)
	go chatHub.Run()

	authHandler := handlers.NewAuthHandler(userRepo, presenceService, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(userRepo)
	presenceHandler := handlers.NewPresenceHandler(presenceService)
	directoryHandler := handlers.NewDirectoryHandler(directoryService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	chatHandler := handlers.NewChatHandler(chatService, directoryService, presenceService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	protected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	protected.Post("/logout", authHandler.Logout)
	protected.Get("/profile", profileHandler.GetProfile)
	protected.Put("/profile", profileHandler.UpdateProfile)

	presence := protected.Group("/presence")
	presence.Put("/online", presenceHandler.UpdateOnline)
	presence.Put("/location", presenceHandler.UpdateLocation)

	protected.Get("/peers", directoryHandler.GetPeers)
	protected.Get("/notifications", notificationHandler.ListNotifications)

	conversations := protected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Post("/:id/read", chatHandler.MarkRead)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
