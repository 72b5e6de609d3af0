package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderKind distinguishes medication and appointment reminders.
// It only affects the displayed/spoken text, never the scheduling.
type ReminderKind string

const (
	KindMedication  ReminderKind = "medication"
	KindAppointment ReminderKind = "appointment"
)

// FrequencyType is the recurrence rule selector.
type FrequencyType string

const (
	FrequencyOnce        FrequencyType = "once"
	FrequencyDaily       FrequencyType = "daily"
	FrequencyWeekly      FrequencyType = "weekly"
	FrequencyEveryXHours FrequencyType = "every_x_hours"
)

// DefaultEveryXHours is used when an every_x_hours reminder has no interval set.
const DefaultEveryXHours = 4

// Frequency describes how often a reminder repeats.
type Frequency struct {
	Type FrequencyType `json:"type"`
	// Days holds weekdays (0=Sunday..6=Saturday) for weekly reminders.
	// Empty means "the anchor's own weekday".
	Days []int `json:"days,omitempty"`
	// EveryXHours is the hour interval for every_x_hours reminders.
	EveryXHours int `json:"everyXHours,omitempty"`
}

// Details carries optional display-only information about a reminder.
type Details struct {
	Dosage             string `json:"dosage,omitempty"`
	Instructions       string `json:"instructions,omitempty"`
	Doctor             string `json:"doctor,omitempty"`
	Location           string `json:"location,omitempty"`
	PreReminderMinutes int    `json:"preReminderMinutes,omitempty"`
}

// Reminder is the unit of schedulable work. The JSON shape is the
// persisted format stored under the reminders preference key.
type Reminder struct {
	ID                  string       `json:"id"`
	Kind                ReminderKind `json:"type"`
	Title               string       `json:"title"`
	NotificationMessage string       `json:"notificationMessage,omitempty"`
	DateTime            time.Time    `json:"dateTime"` // anchor instant, local wall-clock
	Frequency           Frequency    `json:"frequency"`
	Details             Details      `json:"details,omitempty"`
	IsActive            bool         `json:"isActive"`
}

// NewReminder returns an empty active reminder of the given kind with a fresh ID.
func NewReminder(kind ReminderKind) Reminder {
	return Reminder{
		ID:        uuid.New().String(),
		Kind:      kind,
		DateTime:  time.Now(),
		Frequency: Frequency{Type: FrequencyOnce},
		IsActive:  true,
	}
}

// AlertTitle returns the notification title for the reminder's kind.
func (r Reminder) AlertTitle() string {
	if r.Kind == KindAppointment {
		return "Appointment Reminder"
	}
	return "Medication Reminder"
}

// AlertMessage returns the text shown and spoken when the reminder fires:
// the explicit override if set, otherwise a templated default.
func (r Reminder) AlertMessage() string {
	if r.NotificationMessage != "" {
		return r.NotificationMessage
	}
	return "Reminder: " + r.Title
}

// IsRecurring reports whether the reminder fires more than once.
func (r Reminder) IsRecurring() bool {
	return r.Frequency.Type != FrequencyOnce
}

// Interval returns the effective hour interval for every_x_hours reminders.
func (f Frequency) Interval() int {
	if f.EveryXHours >= 1 {
		return f.EveryXHours
	}
	return DefaultEveryXHours
}
