package chat

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/themobileprof/medcompanion-be/internal/classifier"
	"github.com/themobileprof/medcompanion-be/internal/conversation"
	"github.com/themobileprof/medcompanion-be/internal/logger"
	"github.com/themobileprof/medcompanion-be/internal/schedule"
)

type mockTurnLogger struct {
	inputs    []string
	responses []string
	userIDs   []int64
	err       error
}

func (m *mockTurnLogger) Log(_ context.Context, userID int64, input, response string) conversation.Outcome {
	if m.err != nil {
		return conversation.Outcome{Cause: m.err}
	}
	m.userIDs = append(m.userIDs, userID)
	m.inputs = append(m.inputs, input)
	m.responses = append(m.responses, response)
	return conversation.Outcome{Logged: true}
}

func clockAt(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 5, 1, hour, minute, 0, 0, time.Local)
	}
}

func newTestEngine(hour int, turns TurnLogger) *Engine {
	return NewEngine(classifier.NewClassifier(), schedule.Default(), turns, clockAt(hour, 0), logger.NewNop())
}

func TestEngine_Generate(t *testing.T) {
	tests := []struct {
		name         string
		hour         int
		input        string
		wantIntent   classifier.Intent
		wantResponse string
		wantPriority Priority
		wantAction   string
	}{
		{
			name:         "emergency names primary contact",
			hour:         10,
			input:        "Help! I fell",
			wantIntent:   classifier.IntentEmergency,
			wantResponse: "I'm contacting emergency services and your emergency contact John Doe (123-456-7890). Stay calm and don't move.",
			wantPriority: PriorityHigh,
			wantAction:   ActionNotifyEmergency,
		},
		{
			name:         "emergency beats wellness",
			hour:         10,
			input:        "I feel dizzy, emergency!",
			wantIntent:   classifier.IntentEmergency,
			wantResponse: "I'm contacting emergency services and your emergency contact John Doe (123-456-7890). Stay calm and don't move.",
			wantPriority: PriorityHigh,
			wantAction:   ActionNotifyEmergency,
		},
		{
			name:         "medication schedule in the morning",
			hour:         8,
			input:        "what is my medication schedule",
			wantIntent:   classifier.IntentMedication,
			wantResponse: "Here's your medication schedule for morning:\n- Blood Pressure Medication (10mg): Take with water\n- Vitamin D (1000IU): Take with food",
			wantPriority: PriorityNormal,
		},
		{
			name:         "medication schedule at night",
			hour:         23,
			input:        "which pill do I take, what now?",
			wantIntent:   classifier.IntentMedication,
			wantResponse: "Here's your medication schedule for night:\nNo medications scheduled for this time period.",
			wantPriority: PriorityNormal,
		},
		{
			name:         "medication sub-branch matches message as typed",
			hour:         13,
			input:        "What pills do I take?",
			wantIntent:   classifier.IntentMedication,
			wantResponse: "Your current medications for afternoon are ready. Click 'Get Medication Reminder' button to get more details!",
			wantPriority: PriorityNormal,
		},
		{
			name:         "medication upper-case schedule is not a listing request",
			hour:         13,
			input:        "Medicine SCHEDULE",
			wantIntent:   classifier.IntentMedication,
			wantResponse: "Your current medications for afternoon are ready. Click 'Get Medication Reminder' button to get more details!",
			wantPriority: PriorityNormal,
		},
		{
			name:         "medication remind is advisory",
			hour:         13,
			input:        "remind me about my pills",
			wantIntent:   classifier.IntentMedication,
			wantResponse: remindText,
			wantPriority: PriorityNormal,
		},
		{
			name:         "medication default prompt",
			hour:         18,
			input:        "my medicine",
			wantIntent:   classifier.IntentMedication,
			wantResponse: "Your current medications for evening are ready. Click 'Get Medication Reminder' button to get more details!",
			wantPriority: PriorityNormal,
		},
		{
			name:         "wellness tired",
			hour:         15,
			input:        "I am feeling tired today",
			wantIntent:   classifier.IntentWellness,
			wantResponse: symptomResponses[0].text,
			wantPriority: PriorityHigh,
		},
		{
			name:         "wellness dizzy",
			hour:         15,
			input:        "so dizzy",
			wantIntent:   classifier.IntentWellness,
			wantResponse: symptomResponses[2].text,
			wantPriority: PriorityHigh,
		},
		{
			name:         "wellness first listed keyword wins",
			hour:         15,
			input:        "sick and tired",
			wantIntent:   classifier.IntentWellness,
			wantResponse: symptomResponses[0].text,
			wantPriority: PriorityHigh,
		},
		{
			name:         "wellness symptom matches message as typed",
			hour:         15,
			input:        "I feel TIRED",
			wantIntent:   classifier.IntentWellness,
			wantResponse: wellnessFallback,
			wantPriority: PriorityNormal,
		},
		{
			name:         "wellness generic when no specific symptom",
			hour:         15,
			input:        "I feel strange",
			wantIntent:   classifier.IntentWellness,
			wantResponse: wellnessFallback,
			wantPriority: PriorityNormal,
		},
		{
			name:         "greeting is period aware",
			hour:         19,
			input:        "Hello there",
			wantIntent:   classifier.IntentGreeting,
			wantResponse: "Good evening! How are you feeling today? Would you like to review your medication schedule?",
			wantPriority: PriorityNormal,
		},
		{
			name:         "general",
			hour:         9,
			input:        "tell me a story",
			wantIntent:   classifier.IntentGeneral,
			wantResponse: generalText,
			wantPriority: PriorityNormal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(tt.hour, &mockTurnLogger{})
			reply := engine.Generate(tt.input)

			if reply.Intent != tt.wantIntent {
				t.Errorf("Intent = %v, want %v", reply.Intent, tt.wantIntent)
			}
			if reply.Response != tt.wantResponse {
				t.Errorf("Response = %q, want %q", reply.Response, tt.wantResponse)
			}
			if reply.Priority != tt.wantPriority {
				t.Errorf("Priority = %v, want %v", reply.Priority, tt.wantPriority)
			}
			if reply.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", reply.Action, tt.wantAction)
			}
		})
	}
}

func TestEngine_RespondLogsTurn(t *testing.T) {
	turns := &mockTurnLogger{}
	engine := newTestEngine(8, turns)

	reply := engine.Respond(context.Background(), Request{UserID: 3, Message: "good morning"})

	if !reply.Logged || reply.LogErr != nil {
		t.Fatalf("reply not logged: %+v", reply)
	}
	if len(turns.inputs) != 1 || turns.inputs[0] != "good morning" {
		t.Fatalf("logged inputs = %v", turns.inputs)
	}
	if turns.responses[0] != reply.Response || turns.userIDs[0] != 3 {
		t.Errorf("logged turn does not match reply: %v / %v", turns.responses, turns.userIDs)
	}
}

func TestEngine_LoggingFailureKeepsResponse(t *testing.T) {
	ok := newTestEngine(8, &mockTurnLogger{}).Respond(context.Background(), Request{Message: "hello"})
	failed := newTestEngine(8, &mockTurnLogger{err: sql.ErrConnDone}).Respond(context.Background(), Request{Message: "hello"})

	if failed.Response != ok.Response || failed.Priority != ok.Priority || failed.Action != ok.Action {
		t.Errorf("logging failure changed the reply: %+v vs %+v", failed, ok)
	}
	if failed.Logged || !errors.Is(failed.LogErr, sql.ErrConnDone) {
		t.Errorf("failure cause not reported: %+v", failed)
	}
	if failed.Degraded {
		t.Error("logging failure must not degrade the reply")
	}
}

func TestEngine_Reminder(t *testing.T) {
	tests := []struct {
		hour       int
		wantPeriod schedule.Period
		wantText   string
	}{
		{
			hour:       11,
			wantPeriod: schedule.Morning,
			wantText:   "Time for your morning medications!\n- Blood Pressure Medication (10mg): Take with water\n- Vitamin D (1000IU): Take with food",
		},
		{
			hour:       5,
			wantPeriod: schedule.Night,
			wantText:   "Time for your night medications!\nNo medications scheduled for this time period.",
		},
	}

	for _, tt := range tests {
		r := newTestEngine(tt.hour, &mockTurnLogger{}).Reminder()
		if r.TimePeriod != tt.wantPeriod || r.Reminder != tt.wantText || r.Priority != PriorityNormal {
			t.Errorf("Reminder() at %d = %+v", tt.hour, r)
		}
	}
}

func TestDegraded(t *testing.T) {
	cause := errors.New("boom")
	reply := Degraded(cause)

	if !reply.Degraded || !errors.Is(reply.Cause, cause) {
		t.Errorf("Degraded() = %+v", reply)
	}
	if reply.Priority != PriorityNormal || reply.Action != "" {
		t.Errorf("fallback must be normal priority with no action: %+v", reply)
	}

	r := DegradedReminder()
	if r.TimePeriod != "" || r.Priority != PriorityNormal {
		t.Errorf("DegradedReminder() = %+v", r)
	}
}
