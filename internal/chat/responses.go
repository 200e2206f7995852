package chat

import (
	"fmt"
	"strings"

	"github.com/themobileprof/medcompanion-be/internal/schedule"
)

// Priority is an advisory urgency tag for display emphasis
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// ActionNotifyEmergency asks the client to notify emergency services
const ActionNotifyEmergency = "notify_emergency"

const (
	remindText        = "I'll remind you when it's time for your next medication. Would you like me to set up regular reminders?"
	wellnessFallback  = "How are you feeling? Would you like to talk about any specific symptoms?"
	generalText       = "I'm here to help. We can talk about your medications, health, or any concerns you have."
	emergencyTemplate = "I'm contacting emergency services and your emergency contact %s (%s). Stay calm and don't move."
)

// symptomResponses is checked in order; the first keyword found wins
var symptomResponses = []struct {
	keyword string
	text    string
}{
	{"tired", "I understand you're feeling tired. Have you been getting enough rest? Would you like to review your sleep schedule?"},
	{"pain", "I'm sorry you're in pain. Can you tell me where it hurts and how long you've been feeling this way?"},
	{"dizzy", "Feeling dizzy can be serious. Have you taken your blood pressure medication today? Should I contact your doctor?"},
	{"sick", "I'm sorry you're not feeling well. Would you like me to check your symptoms or contact your doctor?"},
}

// Emergency ignores the message content; matching the intent is enough
func emergencyReply(primary schedule.Contact) Reply {
	return Reply{
		Response: fmt.Sprintf(emergencyTemplate, primary.Name, primary.Phone),
		Priority: PriorityHigh,
		Action:   ActionNotifyEmergency,
	}
}

// medicationReply expects lower-cased input.
// "remind" only produces advisory text; no reminder is scheduled.
func medicationReply(input string, period schedule.Period, sched *schedule.Schedule) Reply {
	switch {
	case strings.Contains(input, "schedule") || strings.Contains(input, "what"):
		return Reply{
			Response: fmt.Sprintf("Here's your medication schedule for %s:\n%s", period, sched.Details(period)),
			Priority: PriorityNormal,
		}
	case strings.Contains(input, "remind"):
		return Reply{Response: remindText, Priority: PriorityNormal}
	default:
		return Reply{
			Response: fmt.Sprintf("Your current medications for %s are ready. Click 'Get Medication Reminder' button to get more details!", period),
			Priority: PriorityNormal,
		}
	}
}

// wellnessReply matches symptoms against the message as typed; only intent
// classification is case-insensitive. Messages that reached the wellness
// intent through "feel"/"feeling" alone get the generic prompt.
func wellnessReply(input string) Reply {
	for _, s := range symptomResponses {
		if strings.Contains(input, s.keyword) {
			return Reply{Response: s.text, Priority: PriorityHigh}
		}
	}
	return Reply{Response: wellnessFallback, Priority: PriorityNormal}
}

func greetingReply(period schedule.Period) Reply {
	return Reply{
		Response: fmt.Sprintf("Good %s! How are you feeling today? Would you like to review your medication schedule?", period),
		Priority: PriorityNormal,
	}
}

func generalReply() Reply {
	return Reply{Response: generalText, Priority: PriorityNormal}
}

// Reminder is the payload for a medication reminder
type Reminder struct {
	Reminder   string          `json:"reminder"`
	Priority   Priority        `json:"priority"`
	TimePeriod schedule.Period `json:"time_period,omitempty"`
}

func reminderFor(period schedule.Period, sched *schedule.Schedule) Reminder {
	return Reminder{
		Reminder:   fmt.Sprintf("Time for your %s medications!\n%s", period, sched.Details(period)),
		Priority:   PriorityNormal,
		TimePeriod: period,
	}
}
