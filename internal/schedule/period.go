package schedule

import "time"

// Period is a coarse part of the day used to select the active medication list
type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
	Night     Period = "night"
)

// PeriodForHour maps a wall-clock hour (0-23) to its period.
// Boundary hours belong to the period that starts at them.
func PeriodForHour(hour int) Period {
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 23:
		return Evening
	default:
		return Night
	}
}

// PeriodAt returns the period for the local hour of t
func PeriodAt(t time.Time) Period {
	return PeriodForHour(t.Hour())
}

func (p Period) String() string {
	return string(p)
}

func (p Period) valid() bool {
	switch p {
	case Morning, Afternoon, Evening, Night:
		return true
	}
	return false
}
