package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/medcompanion-be/internal/api/middleware"
	"github.com/themobileprof/medcompanion-be/internal/logger"
)

//go:embed templates/*.html
var templatesFS embed.FS

// RouterConfig bundles the handlers and settings for NewRouter
type RouterConfig struct {
	Companion      *CompanionHandler
	ChatSocket     gin.HandlerFunc
	Log            *logger.Logger
	DefaultUserID  int64
	AllowedOrigins []string
	RequestsPerMin int
	Burst          int
	// Context bounds background work such as rate limiter sweeps.
	// Nil means context.Background().
	Context        context.Context
}

// NewRouter wires middleware and routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		cfg.Log.Error("Unhandled panic", "error", recovered, "request_id", middleware.GetRequestID(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecurityHeaders())
	if cfg.RequestsPerMin > 0 {
		router.Use(middleware.PerIP(ctx, cfg.RequestsPerMin, cfg.Burst))
	}
	router.Use(middleware.UserIdentity(cfg.DefaultUserID))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	chatLimits := []gin.HandlerFunc{}
	if cfg.RequestsPerMin > 0 {
		chatLimits = append(chatLimits, middleware.PerUser(ctx, cfg.RequestsPerMin, cfg.Burst))
	}

	h := cfg.Companion
	router.GET("/", h.Home)
	router.GET("/health", h.Health)
	router.POST("/chat", append(chatLimits, h.Chat)...)
	router.GET("/remind", h.Remind)
	router.GET("/history", h.History)
	router.GET("/medication_schedule", h.MedicationSchedule)

	if cfg.ChatSocket != nil {
		router.GET("/ws/chat", cfg.ChatSocket)
	}

	return router
}
