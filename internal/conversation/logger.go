package conversation

import (
	"context"
	"time"

	"github.com/themobileprof/medcompanion-be/internal/db"
	"github.com/themobileprof/medcompanion-be/internal/logger"
)

// MaxHistory caps how many turns Recent returns
const MaxHistory = 50

// Store is the persistence the logger needs
type Store interface {
	SaveTurn(ctx context.Context, userID int64, at time.Time, input, response string) (*db.Turn, error)
	RecentTurns(ctx context.Context, userID int64, limit int) ([]db.Turn, error)
}

// Outcome reports whether a turn was persisted.
// Cause is kept for callers and tests; it is never shown to the end user.
type Outcome struct {
	Logged bool
	Cause  error
}

// Logger records conversation turns on a best-effort basis
type Logger struct {
	store         Store
	log           *logger.Logger
	now           func() time.Time
	defaultUserID int64
}

// NewLogger creates a conversation logger. now supplies turn timestamps.
func NewLogger(store Store, log *logger.Logger, now func() time.Time, defaultUserID int64) *Logger {
	if now == nil {
		now = time.Now
	}
	return &Logger{
		store:         store,
		log:           log,
		now:           now,
		defaultUserID: defaultUserID,
	}
}

// UserOrDefault returns userID, or the default identifier when none is set
func (l *Logger) UserOrDefault(userID int64) int64 {
	if userID <= 0 {
		return l.defaultUserID
	}
	return userID
}

// Log appends one turn. Persistence errors are written to the operational
// log and reported in the Outcome, never returned.
func (l *Logger) Log(ctx context.Context, userID int64, input, response string) Outcome {
	userID = l.UserOrDefault(userID)

	if _, err := l.store.SaveTurn(ctx, userID, l.now(), input, response); err != nil {
		l.log.Error("Error logging conversation", "user_id", userID, "error", err)
		return Outcome{Cause: err}
	}
	return Outcome{Logged: true}
}

// Recent returns up to limit turns for the user, newest first. limit is capped at MaxHistory.
func (l *Logger) Recent(ctx context.Context, userID int64, limit int) ([]db.Turn, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}

	turns, err := l.store.RecentTurns(ctx, l.UserOrDefault(userID), limit)
	if err != nil {
		return nil, err
	}
	if len(turns) > limit {
		turns = turns[:limit]
	}
	return turns, nil
}
