package routes

import (
	"net/http"

	"crm-service/internal/handler"
	"crm-service/internal/middleware"
	"crm-service/pkg/config"
	"crm-service/pkg/logger"
	"crm-service/pkg/validator"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// SetupRoutes builds the echo server with the global middleware chain, the
// public endpoints and the token protected /api/v1 group
func SetupRoutes(cfg *config.Config, h *handler.HandlerManager, tokens middleware.TokenResolver, log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Server.IsDev()
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.ErrorHandler

	// order matters: metrics must observe the status written by the error handler
	e.Use(middleware.RequestIDMiddleware)
	e.Use(prometheus.MetricsMiddleware())
	e.Use(logger.Middleware(log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*"},
		AllowCredentials: true,
	}))

	// Public routes
	e.GET("/health", h.Health.Health)
	e.GET("/metrics", h.Health.Metrics)

	api := e.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(tokens))

	leads := api.Group("/leads")
	leads.GET("", h.Leads.List)
	leads.GET("/tags", h.Leads.Tags)
	leads.GET("/origins", h.Leads.Origins)
	leads.GET("/:id", h.Leads.Get)
	leads.POST("", h.Leads.Create)
	leads.PATCH("/:id", h.Leads.Update)
	leads.DELETE("/:id", h.Leads.Delete)
	leads.PATCH("/:id/stage", h.Leads.MoveStage)
	leads.POST("/:id/mark-lost", h.Leads.MarkLost)
	leads.POST("/:id/mark-sold", h.Leads.MarkSold)
	leads.POST("/:id/reactivate", h.Leads.Reactivate)
	leads.GET("/:id/history", h.Leads.History)
	leads.GET("/:id/custom-values", h.Leads.CustomValues)
	leads.PUT("/:id/custom-values", h.Leads.SetCustomValues)
	api.GET("/custom-fields", h.Leads.CustomFields)

	pipelines := api.Group("/pipelines")
	pipelines.GET("", h.Pipelines.List)
	pipelines.GET("/:id", h.Pipelines.Get)
	pipelines.GET("/:id/stages", h.Pipelines.Stages)

	tasks := api.Group("/tasks")
	tasks.GET("", h.Tasks.List)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.POST("", h.Tasks.Create)
	tasks.PATCH("/:id", h.Tasks.Update)
	tasks.DELETE("/:id", h.Tasks.Delete)
	tasks.POST("/:id/complete", h.Tasks.Complete)
	tasks.POST("/:id/reopen", h.Tasks.Reopen)
	tasks.GET("/:id/comments", h.Tasks.Comments)
	tasks.POST("/:id/comments", h.Tasks.CreateComment)
	api.GET("/task-types", h.Tasks.Types)

	bookings := api.Group("/bookings")
	bookings.GET("/calendars", h.Bookings.Calendars)
	bookings.GET("/calendars/:id", h.Bookings.Calendar)
	bookings.GET("/calendars/:id/availability", h.Bookings.Availability)
	bookings.GET("/calendars/:id/types", h.Bookings.Types)
	bookings.GET("/calendars/:id/blocks", h.Bookings.Blocks)
	bookings.GET("", h.Bookings.List)
	bookings.GET("/:id", h.Bookings.Get)
	bookings.POST("", h.Bookings.Create)
	bookings.PATCH("/:id", h.Bookings.Update)
	bookings.DELETE("/:id", h.Bookings.Delete)
	bookings.POST("/:id/cancel", h.Bookings.Cancel)
	bookings.POST("/:id/confirm", h.Bookings.Confirm)

	chat := api.Group("/chat")
	chat.GET("/instances", h.Chat.Instances)
	chat.GET("/conversations", h.Chat.List)
	chat.GET("/conversations/:id", h.Chat.Get)
	chat.POST("/conversations", h.Chat.Create)
	chat.PATCH("/conversations/:id", h.Chat.Update)
	chat.POST("/conversations/:id/close", h.Chat.Close)
	chat.GET("/conversations/:id/messages", h.Chat.Messages)
	chat.POST("/conversations/:id/messages", h.Chat.CreateMessage)

	api.GET("/vehicles", h.Catalog.Vehicles)
	api.GET("/users", h.Catalog.Users)

	return e
}
