package schedule

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed schedule.yaml
var defaultSchedule []byte

// NoMedicationsText is returned by Details for a period with nothing configured
const NoMedicationsText = "No medications scheduled for this time period."

// PrimaryContact is the role notified on emergencies
const PrimaryContact = "primary"

var (
	ErrNoPrimaryContact = errors.New("schedule has no primary emergency contact")
	ErrUnknownPeriod    = errors.New("unknown time period")
)

// Medication is one configured dose
type Medication struct {
	Name         string `yaml:"name" json:"name"`
	Dosage       string `yaml:"dosage" json:"dosage"`
	Instructions string `yaml:"instructions" json:"instructions"`
}

// Band is the medication list for one period of the day
type Band struct {
	TimeRange   [2]int       `yaml:"time_range" json:"time_range"`
	Medications []Medication `yaml:"medications" json:"medications"`
}

// Contact is an emergency contact
type Contact struct {
	Name         string `yaml:"name" json:"name"`
	Relationship string `yaml:"relationship,omitempty" json:"relationship,omitempty"`
	Phone        string `yaml:"phone" json:"phone"`
}

type document struct {
	Schedule map[Period]Band    `yaml:"medication_schedule"`
	Contacts map[string]Contact `yaml:"emergency_contacts"`
}

// Schedule holds the medication bands and emergency contacts.
// It is built once at startup and never mutated; accessors return copies.
type Schedule struct {
	bands    map[Period]Band
	contacts map[string]Contact
}

// Default returns the built-in schedule
func Default() *Schedule {
	s, err := Parse(defaultSchedule)
	if err != nil {
		panic(fmt.Sprintf("schedule: invalid built-in schedule: %v", err))
	}
	return s
}

// Load reads a schedule from a YAML file, or returns the built-in one when path is empty
func Load(path string) (*Schedule, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML schedule document
func Parse(data []byte) (*Schedule, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schedule: %w", err)
	}

	for period := range doc.Schedule {
		if !period.valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPeriod, period)
		}
	}
	if _, ok := doc.Contacts[PrimaryContact]; !ok {
		return nil, ErrNoPrimaryContact
	}

	if doc.Schedule == nil {
		doc.Schedule = map[Period]Band{}
	}
	return &Schedule{bands: doc.Schedule, contacts: doc.Contacts}, nil
}

// Medications returns the ordered medications for a period.
// ok is false when the period has nothing scheduled (notably night).
func (s *Schedule) Medications(p Period) (meds []Medication, ok bool) {
	band, found := s.bands[p]
	if !found || len(band.Medications) == 0 {
		return nil, false
	}
	return append([]Medication(nil), band.Medications...), true
}

// Details renders the medication list for a period, one line per medication
func (s *Schedule) Details(p Period) string {
	meds, ok := s.Medications(p)
	if !ok {
		return NoMedicationsText
	}

	lines := make([]string, 0, len(meds))
	for _, med := range meds {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", med.Name, med.Dosage, med.Instructions))
	}
	return strings.Join(lines, "\n")
}

// Contact returns the emergency contact registered under role
func (s *Schedule) Contact(role string) (Contact, bool) {
	c, ok := s.contacts[role]
	return c, ok
}

// Primary returns the primary emergency contact; Parse guarantees it exists
func (s *Schedule) Primary() Contact {
	return s.contacts[PrimaryContact]
}

// Bands returns a copy of the whole medication configuration keyed by period
func (s *Schedule) Bands() map[Period]Band {
	out := make(map[Period]Band, len(s.bands))
	for p, band := range s.bands {
		out[p] = Band{
			TimeRange:   band.TimeRange,
			Medications: append([]Medication(nil), band.Medications...),
		}
	}
	return out
}

// Contacts returns a copy of the emergency contacts keyed by role
func (s *Schedule) Contacts() map[string]Contact {
	out := make(map[string]Contact, len(s.contacts))
	for role, c := range s.contacts {
		out[role] = c
	}
	return out
}
