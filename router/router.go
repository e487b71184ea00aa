package router

import (
	"net/http"
	"time"

	"clinic-automation/internal/config"
	"clinic-automation/internal/handlers"
	"clinic-automation/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestBody = 1 << 20

// Dependencies are the services the HTTP API is built on
type Dependencies struct {
	Config        *config.Config
	Notifications handlers.NotificationServiceInterface
	// Content may be nil when no language model is configured
	Content handlers.ContentGeneratorInterface
	Logs    handlers.DeliveryLogReaderInterface
	Version string
}

type Router struct {
	engine  *gin.Engine
	version string
}

func NewRouter(deps Dependencies) *Router {
	if deps.Config == nil {
		panic("config cannot be nil")
	}
	if deps.Notifications == nil {
		panic("notification service cannot be nil")
	}
	if deps.Logs == nil {
		panic("delivery log reader cannot be nil")
	}

	r := &Router{
		engine:  gin.New(),
		version: deps.Version,
	}
	r.engine.HandleMethodNotAllowed = true

	if deps.Config.Server.ForceHTTPS {
		r.engine.Use(middleware.HTTPSRedirectMiddleware())
	}
	r.engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.CORSMiddleware(),
		middleware.RequestSizeLimitMiddleware(maxRequestBody),
		middleware.AuditLogMiddleware(),
	)

	notifications := handlers.NewNotificationHandler(deps.Notifications, deps.Config)
	content := handlers.NewContentHandler(deps.Content)
	logs := handlers.NewLogsHandler(deps.Logs)
	auth := handlers.NewAuthHandler(deps.Config)

	// Configure routes
	r.engine.GET("/health", r.handleHealth)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.engine.NoRoute(r.handleNotFound)
	r.engine.NoMethod(r.handleMethodNotAllowed)

	api := r.engine.Group("/api")
	{
		api.POST("/notifications", notifications.Send)
		api.GET("/notifications", notifications.NotificationsInfo)

		api.POST("/send-custom-message", notifications.SendCustomMessage)
		api.GET("/send-custom-message", notifications.CustomMessageInfo)

		api.POST("/sms/send", notifications.SendSMS)
		api.GET("/sms/send", notifications.SMSStatus)

		api.POST("/telegram-send", notifications.TelegramSend)
		api.GET("/telegram-send", notifications.TelegramStatus)

		api.POST("/group-message", notifications.GroupMessage)
		api.GET("/group-message", notifications.GroupInfo)

		api.GET("/complete-automation", notifications.CompleteAutomation)

		api.POST("/content/generate", content.Generate)

		api.POST("/auth/token", auth.IssueToken)

		api.GET("/logs",
			middleware.AuthMiddleware(deps.Config),
			middleware.RequireScope(middleware.ScopeLogsRead),
			logs.List,
		)
	}

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"version": r.version,
		"service": "clinic-automation",
	})
}

func (r *Router) handleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Not found"})
}

func (r *Router) handleMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"success": false, "error": "Method not allowed"})
}
