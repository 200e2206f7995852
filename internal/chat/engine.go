package chat

import (
	"context"
	"time"

	"github.com/themobileprof/medcompanion-be/internal/classifier"
	"github.com/themobileprof/medcompanion-be/internal/conversation"
	"github.com/themobileprof/medcompanion-be/internal/fallback"
	"github.com/themobileprof/medcompanion-be/internal/logger"
	"github.com/themobileprof/medcompanion-be/internal/schedule"
)

// Request contains all data needed to process a message
type Request struct {
	UserID  int64
	Message string
}

// Reply is the outcome of one chat exchange.
// Only Response, Priority and Action are ever sent to the caller.
type Reply struct {
	Response string   `json:"response"`
	Priority Priority `json:"priority"`
	Action   string   `json:"action,omitempty"`

	Intent     classifier.Intent `json:"-"`
	TimePeriod schedule.Period   `json:"-"`

	// Logged is false when the turn could not be persisted; LogErr holds why.
	Logged bool  `json:"-"`
	LogErr error `json:"-"`

	// Degraded marks a fallback reply substituted for a failure in Cause.
	Degraded bool  `json:"-"`
	Cause    error `json:"-"`
}

// Degraded builds the user-safe reply for a failed chat exchange
func Degraded(cause error) Reply {
	fb := fallback.GetFallbackResponse(fallback.KindChat)
	return Reply{
		Response: fb.Content,
		Priority: Priority(fb.Priority),
		Degraded: true,
		Cause:    cause,
	}
}

// DegradedReminder builds the user-safe reminder for a failed lookup
func DegradedReminder() Reminder {
	fb := fallback.GetFallbackResponse(fallback.KindReminder)
	return Reminder{Reminder: fb.Content, Priority: Priority(fb.Priority)}
}

// Interfaces for dependencies
type ClassifierInterface interface {
	Classify(text string) classifier.ClassifierResult
}

type TurnLogger interface {
	Log(ctx context.Context, userID int64, input, response string) conversation.Outcome
}

// Engine handles core conversation logic independent of transport.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	classifier ClassifierInterface
	schedule   *schedule.Schedule
	turns      TurnLogger
	now        func() time.Time
	log        *logger.Logger
}

// NewEngine creates a new transport-agnostic chat engine
func NewEngine(
	cls ClassifierInterface,
	sched *schedule.Schedule,
	turns TurnLogger,
	now func() time.Time,
	log *logger.Logger,
) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		classifier: cls,
		schedule:   sched,
		turns:      turns,
		now:        now,
		log:        log,
	}
}

// Respond classifies and answers a message, then logs the exchange.
// The reply content never depends on whether logging succeeded.
func (e *Engine) Respond(ctx context.Context, req Request) Reply {
	reply := e.Generate(req.Message)

	outcome := e.turns.Log(ctx, req.UserID, req.Message, reply.Response)
	reply.Logged = outcome.Logged
	reply.LogErr = outcome.Cause

	e.log.Debug("Chat reply",
		"user_id", req.UserID,
		"intent", reply.Intent,
		"priority", reply.Priority,
		"logged", reply.Logged,
	)
	return reply
}

// Generate produces a reply without side effects
func (e *Engine) Generate(message string) Reply {
	result := e.classifier.Classify(message)
	period := schedule.PeriodAt(e.now())

	var reply Reply
	switch result.Intent {
	case classifier.IntentEmergency:
		reply = emergencyReply(e.schedule.Primary())
	case classifier.IntentMedication:
		reply = medicationReply(message, period, e.schedule)
	case classifier.IntentWellness:
		reply = wellnessReply(message)
	case classifier.IntentGreeting:
		reply = greetingReply(period)
	default:
		reply = generalReply()
	}

	reply.Intent = result.Intent
	reply.TimePeriod = period
	return reply
}

// Reminder returns the medication reminder for the current period
func (e *Engine) Reminder() Reminder {
	return reminderFor(schedule.PeriodAt(e.now()), e.schedule)
}

// Schedule exposes the immutable schedule configuration
func (e *Engine) Schedule() *schedule.Schedule {
	return e.schedule
}
