package handler

import (
	"database/sql"
	"net/http"

	"marketplace/internal/bid"
	"marketplace/internal/cache"
	"marketplace/internal/chat"
	"marketplace/internal/config"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/notification"
	"marketplace/internal/observability"
	"marketplace/internal/payment"
	"marketplace/internal/realtime"
	"marketplace/internal/review"
	"marketplace/internal/session"
	"marketplace/internal/task"
	"marketplace/internal/tracking"
	"marketplace/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"
)

// Per-route limits on top of the default per-user bucket. Keys are gin's
// full route patterns.
func routeLimits() map[string]*middleware.RateLimiterConfig {
	return map[string]*middleware.RateLimiterConfig{
		"POST /api/v1/tasks":              middleware.TaskPostRateLimiter(),
		"POST /api/v1/tasks/:id/bids":     middleware.BidRateLimiter(),
		"POST /api/v1/tasks/:id/messages": middleware.MessageRateLimiter(),
		"PUT /api/v1/location":            middleware.LocationRateLimiter(),
	}
}

// SetupHandler initializes all dependencies and routes. The returned broker
// must be run by the caller so events published by any instance reach the
// websocket subscribers of this one.
func SetupHandler(db *sql.DB, conn *amqp091.Connection, redisClient *redis.Client, cfg *config.Config) (*gin.Engine, *realtime.Broker) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.PrometheusMiddleware(observability.GlobalMetrics))

	// Shared infrastructure
	store := cache.NewRedisCache(redisClient)
	notifier := notification.NewQueuePublisher(conn)
	hub := realtime.NewHub()
	broker := realtime.NewBroker(redisClient, hub)

	// Initialize repositories
	userRepo := user.NewUserRepository()
	taskRepo := task.NewTaskRepository()
	bidRepo := bid.NewBidRepository()
	messageRepo := chat.NewMessageRepository()
	reviewRepo := review.NewReviewRepository()
	paymentRepo := payment.NewPaymentRepository()

	// Initialize services
	userService := user.NewUserService(userRepo, db, cfg.JWT.Secret)
	taskService := task.NewTaskService(taskRepo, db, store, bidRepo, userService, notifier, broker)
	bidService := bid.NewBidService(bidRepo, taskRepo, db, store, userService, notifier, broker)
	chatService := chat.NewChatService(messageRepo, taskRepo, bidRepo, userService, db, notifier, broker)
	reviewService := review.NewReviewService(reviewRepo, taskRepo, userRepo, db)
	trackingService := tracking.NewTrackingService(tracking.NewRedisLocationStore(redisClient), taskRepo, db, broker)
	paymentService := payment.NewPaymentService(paymentRepo, db)
	sessionService := session.NewSessionService(session.NewRedisStore(redisClient))

	realtimeHandler := realtime.NewHandler(hub, newTopicAuthorizer(chatService, trackingService, taskService))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes - Authentication
	public := r.Group("", middleware.IPRateLimiterMiddleware(redisClient, middleware.AuthRateLimiter()))

	// Protected routes - API v1
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	api.Use(middleware.RateLimiterMiddleware(redisClient, middleware.DefaultRateLimiterConfig()))
	api.Use(middleware.RouteRateLimiterMiddleware(redisClient, routeLimits()))

	routes := task.Routes{
		Any:      api,
		Customer: api.Group("", middleware.RequireRole(models.RoleCustomer)),
		Worker:   api.Group("", middleware.RequireRole(models.RoleWorker)),
		Admin:    api.Group("/admin", middleware.RequireRole(models.RoleAdmin)),
	}

	user.NewUserController(userService).SetupRoutes(public, api, routes.Admin)
	task.NewTaskController(taskService).SetupRoutes(routes)
	bid.NewBidController(bidService).SetupRoutes(routes)
	chat.NewChatController(chatService).SetupRoutes(api)
	review.NewReviewController(reviewService).SetupRoutes(api)
	tracking.NewTrackingController(trackingService).SetupRoutes(api, routes.Worker)
	payment.NewPaymentController(paymentService).SetupRoutes(api, routes.Worker)
	session.NewSessionController(sessionService).SetupRoutes(api)

	api.GET("/ws", realtimeHandler.Subscribe)

	return r, broker
}
