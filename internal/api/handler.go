package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/medcompanion-be/internal/api/middleware"
	"github.com/themobileprof/medcompanion-be/internal/chat"
	"github.com/themobileprof/medcompanion-be/internal/db"
	"github.com/themobileprof/medcompanion-be/internal/fallback"
	"github.com/themobileprof/medcompanion-be/internal/logger"
	"github.com/themobileprof/medcompanion-be/internal/schedule"
)

var ErrMissingMessage = errors.New("missing message field")

// Responder produces chat replies and reminders
type Responder interface {
	Respond(ctx context.Context, req chat.Request) chat.Reply
	Reminder() chat.Reminder
	Schedule() *schedule.Schedule
}

// HistoryReader reads back logged conversation turns
type HistoryReader interface {
	Recent(ctx context.Context, userID int64, limit int) ([]db.Turn, error)
}

// CompanionHandler serves the chat, reminder, history and schedule endpoints
type CompanionHandler struct {
	engine       Responder
	history      HistoryReader
	log          *logger.Logger
	historyLimit int
}

// NewCompanionHandler creates a new companion handler
func NewCompanionHandler(engine Responder, history HistoryReader, log *logger.Logger, historyLimit int) *CompanionHandler {
	return &CompanionHandler{
		engine:       engine,
		history:      history,
		log:          log,
		historyLimit: historyLimit,
	}
}

type chatBody struct {
	Message *string `json:"message"`
}

// Home renders the landing page
// GET /
func (h *CompanionHandler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Schedule": h.engine.Schedule().Bands(),
	})
}

// Chat answers one message
// POST /chat (form field "message", or JSON {"message": ...})
func (h *CompanionHandler) Chat(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var reply chat.Reply
	err := safely(func() error {
		message, err := messageFrom(c)
		if err != nil {
			return err
		}
		reply = h.engine.Respond(c.Request.Context(), chat.Request{UserID: userID, Message: message})
		return nil
	})
	if err != nil {
		reply = chat.Degraded(err)
		h.log.Error("Error in chat endpoint",
			"error", err,
			"user_id", userID,
			"request_id", middleware.GetRequestID(c),
		)
	}

	c.JSON(http.StatusOK, reply)
}

// Remind returns the reminder for the current time period
// GET /remind
func (h *CompanionHandler) Remind(c *gin.Context) {
	var reminder chat.Reminder
	err := safely(func() error {
		reminder = h.engine.Reminder()
		return nil
	})
	if err != nil {
		reminder = chat.DegradedReminder()
		h.log.Error("Error in remind endpoint", "error", err, "request_id", middleware.GetRequestID(c))
	}

	c.JSON(http.StatusOK, reminder)
}

// History returns the most recent turns for the caller, newest first
// GET /history
func (h *CompanionHandler) History(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	turns, err := h.history.Recent(c.Request.Context(), userID, h.historyLimit)
	if err != nil {
		h.log.Error("Error retrieving history",
			"error", err,
			"user_id", userID,
			"request_id", middleware.GetRequestID(c),
		)
		c.JSON(http.StatusOK, gin.H{"error": fallback.GetFallbackResponse(fallback.KindHistory).Content})
		return
	}
	if turns == nil {
		turns = []db.Turn{}
	}

	c.JSON(http.StatusOK, gin.H{"history": turns})
}

// MedicationSchedule returns the full static schedule configuration
// GET /medication_schedule
func (h *CompanionHandler) MedicationSchedule(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"schedule": h.engine.Schedule().Bands()})
}

// Health reports liveness
// GET /health
func (h *CompanionHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// messageFrom reads the message from the form, falling back to a JSON body.
// A present but empty message is valid input.
func messageFrom(c *gin.Context) (string, error) {
	if message, ok := c.GetPostForm("message"); ok {
		return message, nil
	}

	if c.ContentType() == gin.MIMEJSON {
		var body chatBody
		if err := c.ShouldBindJSON(&body); err == nil && body.Message != nil {
			return *body.Message, nil
		}
	}
	return "", ErrMissingMessage
}

// safely runs fn, converting a panic into an error
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
