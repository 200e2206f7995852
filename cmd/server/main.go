package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/medcompanion-be/internal/api"
	"github.com/themobileprof/medcompanion-be/internal/chat"
	"github.com/themobileprof/medcompanion-be/internal/classifier"
	"github.com/themobileprof/medcompanion-be/internal/config"
	"github.com/themobileprof/medcompanion-be/internal/conversation"
	"github.com/themobileprof/medcompanion-be/internal/db"
	"github.com/themobileprof/medcompanion-be/internal/logger"
	"github.com/themobileprof/medcompanion-be/internal/schedule"
	"github.com/themobileprof/medcompanion-be/internal/ws"
)

const wsMessagesPerMinute = 30

func main() {
	cfg, warnings, cfgErr := config.Load()

	appLog, err := logger.New(cfg.LogMode, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLog.Sync()

	for _, w := range warnings {
		appLog.Warn(w)
	}
	if cfgErr != nil {
		appLog.Fatal("Invalid configuration", "error", cfgErr)
	}

	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	sched, err := schedule.Load(cfg.ScheduleFile)
	if err != nil {
		appLog.Fatal("Failed to load medication schedule", "error", err)
	}

	// Initialize database
	database, err := db.NewFromURL(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Migrate(ctx); err != nil {
		cancel()
		appLog.Fatal("Failed to create tables", "error", err)
	}
	user, err := database.EnsureUser(ctx, db.User{ID: cfg.DefaultUserID, Name: cfg.DefaultUserName})
	cancel()
	if err != nil {
		appLog.Warn("Default user unavailable", "user_id", cfg.DefaultUserID, "error", err)
	} else {
		appLog.Info("Default user ready", "user_id", user.ID)
	}

	appLog.Info("Database connected")

	// Initialize components
	turns := conversation.NewLogger(database, appLog, cfg.Now, cfg.DefaultUserID)
	engine := chat.NewEngine(classifier.NewClassifier(), sched, turns, cfg.Now, appLog)

	companionHandler := api.NewCompanionHandler(engine, turns, appLog, cfg.HistoryLimit)
	chatSocket := ws.NewChatHandler(engine, appLog, wsMessagesPerMinute)

	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()

	router := api.NewRouter(api.RouterConfig{
		Context:        serverCtx,
		Companion:      companionHandler,
		ChatSocket:     chatSocket.HandleChat,
		Log:            appLog,
		DefaultUserID:  cfg.DefaultUserID,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestsPerMin: cfg.RateLimitPerMin,
		Burst:          cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLog.Info("Server starting", "addr", "http://localhost:"+cfg.Port)
		appLog.Info("API endpoints",
			"routes", []string{
				"GET    /",
				"GET    /health",
				"POST   /chat",
				"GET    /remind",
				"GET    /history",
				"GET    /medication_schedule",
				"WS     /ws/chat",
			},
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exited")
}
