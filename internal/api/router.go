package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/estatehub/listing-api/docs"
	"github.com/estatehub/listing-api/internal/api/handler"
	"github.com/estatehub/listing-api/internal/api/middleware"
	"github.com/estatehub/listing-api/internal/core/service"
	"github.com/estatehub/listing-api/internal/infrastructure/config"
	mongodb "github.com/estatehub/listing-api/internal/infrastructure/db/mongo"
	"github.com/estatehub/listing-api/internal/infrastructure/db/redis"
	"github.com/estatehub/listing-api/internal/infrastructure/mail"
	"github.com/estatehub/listing-api/internal/relay"
)

// Deps carries everything the router needs that main owns the lifecycle of.
type Deps struct {
	DB     *mongo.Database
	Redis  *goredis.Client
	Hub    *relay.Hub
	Bridge relay.Bridge
	Config *config.Config
	Log    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.Config.ClientOrigin},
		AllowCredentials: true,
	}))

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	propertyRepo := mongodb.NewPropertyRepository(deps.DB)
	messageRepo := mongodb.NewMessageRepository(deps.DB)

	// --- Services ---
	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     deps.Config.SMTP.Host,
		Port:     deps.Config.SMTP.Port,
		Username: deps.Config.SMTP.Username,
		Password: deps.Config.SMTP.Password,
		From:     deps.Config.SMTP.From,
	}, deps.Log)

	authService := service.NewAuthService(userRepo, mailer, deps.Config.JWT.Secret,
		deps.Config.JWT.TTL, deps.Config.JWT.ResetTTL, deps.Config.ClientOrigin, deps.Log)
	propertyService := service.NewPropertyService(propertyRepo, userRepo, deps.Log)
	collectionService := service.NewCollectionService(userRepo, propertyRepo, deps.Log)
	messageService := service.NewMessageService(messageRepo, propertyRepo, userRepo, deps.Log)
	userService := service.NewUserService(userRepo, deps.Log)
	contactService := service.NewContactService(mailer, deps.Config.SMTP.AdminEmail, deps.Log)

	var cache *redis.QueryCache
	if deps.Redis != nil {
		cache = redis.NewQueryCache(deps.Redis, "listings")
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	propertyHandler := handler.NewPropertyHandler(propertyService, cache, deps.Log)
	userHandler := handler.NewUserHandler(userService, collectionService)
	messageHandler := handler.NewMessageHandler(messageService, deps.Bridge, deps.Log)
	contactHandler := handler.NewContactHandler(contactService)
	wsHandler := handler.NewWSHandler(deps.Config.JWT.Secret, userRepo, messageService, deps.Hub, deps.Bridge, deps.Log)

	authRequired := middleware.Auth(deps.Config.JWT.Secret, userRepo)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.GET("/me", authHandler.Me, authRequired)

	// --- Property routes ---
	// Static segments register before /:id so "nearby" and "user" never
	// resolve as listing ids.
	properties := e.Group("/api/properties")
	properties.GET("", propertyHandler.List)
	properties.GET("/nearby/:id", propertyHandler.Nearby)
	properties.GET("/user/:userId", propertyHandler.ByAgent, authRequired)
	properties.GET("/:id", propertyHandler.Get)
	properties.POST("", propertyHandler.Create, authRequired)
	properties.PUT("/:id", propertyHandler.Update, authRequired)
	properties.DELETE("/:id", propertyHandler.Delete, authRequired)

	// --- User routes ---
	users := e.Group("/api/users", authRequired)
	users.GET("/profile", userHandler.Profile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.POST("/favorites", userHandler.ToggleFavorite)
	users.GET("/favorites", userHandler.Favorites)
	users.POST("/comparisons", userHandler.ToggleComparison)
	users.GET("/comparisons", userHandler.Comparisons)

	// --- Message routes ---
	messages := e.Group("/api/messages", authRequired)
	messages.POST("", messageHandler.Send)
	messages.GET("/property/:propertyId", messageHandler.Thread)
	messages.GET("/conversations", messageHandler.Conversations)
	messages.PUT("/read", messageHandler.MarkRead)

	// --- Admin routes ---
	admin := e.Group("/api/admin", authRequired, middleware.AdminOnly())
	admin.GET("/users", userHandler.ListUsers)
	admin.PUT("/users/:id/status", userHandler.SetUserStatus)
	admin.PATCH("/block/:id", userHandler.BlockUser)
	admin.PATCH("/unblock/:id", userHandler.UnblockUser)

	// --- Contact form (public) ---
	e.POST("/api/contact", contactHandler.Submit)

	// --- Live relay ---
	e.GET("/ws", wsHandler.Handle)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.DB, deps.Redis, deps.Hub)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
