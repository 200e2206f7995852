package conversation

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/themobileprof/medcompanion-be/internal/db"
	"github.com/themobileprof/medcompanion-be/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type stubStore struct {
	saved   []db.Turn
	saveErr error
	turns   []db.Turn
	readErr error
	limit   int
	userID  int64
}

func (s *stubStore) SaveTurn(_ context.Context, userID int64, at time.Time, input, response string) (*db.Turn, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	t := db.Turn{ID: int64(len(s.saved) + 1), UserID: userID, Timestamp: at, UserInput: input, Response: response}
	s.saved = append(s.saved, t)
	return &t, nil
}

func (s *stubStore) RecentTurns(_ context.Context, userID int64, limit int) ([]db.Turn, error) {
	s.userID, s.limit = userID, limit
	return s.turns, s.readErr
}

func TestLogger_Log(t *testing.T) {
	tests := []struct {
		name       string
		userID     int64
		saveErr    error
		wantLogged bool
		wantUser   int64
	}{
		{name: "explicit user", userID: 7, wantLogged: true, wantUser: 7},
		{name: "default user", userID: 0, wantLogged: true, wantUser: 1},
		{name: "store failure is swallowed", userID: 7, saveErr: sql.ErrConnDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{saveErr: tt.saveErr}
			core, logs := observer.New(zap.ErrorLevel)
			l := NewLogger(store, logger.FromZap(zap.New(core)), clock, 1)

			out := l.Log(context.Background(), tt.userID, "hello", "Good morning!")

			if out.Logged != tt.wantLogged {
				t.Fatalf("Logged = %v, want %v", out.Logged, tt.wantLogged)
			}
			if tt.saveErr != nil {
				if !errors.Is(out.Cause, tt.saveErr) {
					t.Errorf("Cause = %v, want %v", out.Cause, tt.saveErr)
				}
				if logs.FilterMessage("Error logging conversation").Len() != 1 {
					t.Error("failure was not written to the operational log")
				}
				return
			}

			if len(store.saved) != 1 {
				t.Fatalf("saved %d turns, want 1", len(store.saved))
			}
			got := store.saved[0]
			if got.UserID != tt.wantUser || !got.Timestamp.Equal(fixedNow) {
				t.Errorf("saved turn = %+v", got)
			}
		})
	}
}

func TestLogger_LogWithSQLMock(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectQuery(`INSERT INTO conversation_history`).
		WithArgs(int64(1), fixedNow, "what pill", "Here's your medication schedule").
		WillReturnError(errors.New("database is locked"))

	l := NewLogger(db.Wrap(sqlDB), logger.NewNop(), clock, 1)
	out := l.Log(context.Background(), 0, "what pill", "Here's your medication schedule")

	if out.Logged || out.Cause == nil {
		t.Fatalf("Outcome = %+v, want degraded", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogger_Recent(t *testing.T) {
	many := make([]db.Turn, 60)
	for i := range many {
		many[i] = db.Turn{ID: int64(60 - i), Timestamp: fixedNow.Add(-time.Duration(i) * time.Minute)}
	}

	tests := []struct {
		name      string
		limit     int
		turns     []db.Turn
		wantLimit int
		wantLen   int
	}{
		{name: "default cap", limit: 0, turns: many[:3], wantLimit: 50, wantLen: 3},
		{name: "above cap", limit: 500, turns: many, wantLimit: 50, wantLen: 50},
		{name: "smaller limit", limit: 10, turns: many[:10], wantLimit: 10, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{turns: tt.turns}
			l := NewLogger(store, logger.NewNop(), clock, 1)

			turns, err := l.Recent(context.Background(), 0, tt.limit)
			if err != nil {
				t.Fatalf("Recent() error = %v", err)
			}
			if store.limit != tt.wantLimit {
				t.Errorf("store limit = %d, want %d", store.limit, tt.wantLimit)
			}
			if store.userID != 1 {
				t.Errorf("store user = %d, want default 1", store.userID)
			}
			if len(turns) != tt.wantLen {
				t.Errorf("len(turns) = %d, want %d", len(turns), tt.wantLen)
			}
		})
	}
}

func TestLogger_RecentError(t *testing.T) {
	store := &stubStore{readErr: sql.ErrConnDone}
	l := NewLogger(store, logger.NewNop(), clock, 1)

	if _, err := l.Recent(context.Background(), 3, 50); !errors.Is(err, sql.ErrConnDone) {
		t.Fatalf("Recent() error = %v", err)
	}
}
