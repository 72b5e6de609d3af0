package main

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/wrenlake/med-minder/pkg/models"
	"github.com/wrenlake/med-minder/pkg/recurrence"
)

// writeICal exports reminders as an iCalendar file so they can be
// imported into a regular calendar application. Recurring reminders
// carry an RRULE; a pre-reminder offset becomes a VALARM.
func writeICal(w io.Writer, reminders []models.Reminder) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//wrenlake//MedMinder//EN")

	now := time.Now()

	for _, r := range reminders {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, r.ID)
		event.Props.SetText(ical.PropSummary, r.Title)
		event.Props.SetDateTime(ical.PropDateTimeStamp, now)
		event.Props.SetDateTime(ical.PropDateTimeStart, r.DateTime)

		description := r.AlertMessage()
		if r.Details.Dosage != "" {
			description += "\nDosage: " + r.Details.Dosage
		}
		if r.Details.Instructions != "" {
			description += "\nInstructions: " + r.Details.Instructions
		}
		if r.Details.Doctor != "" {
			description += "\nDoctor: " + r.Details.Doctor
		}
		event.Props.SetText(ical.PropDescription, description)

		if r.Details.Location != "" {
			event.Props.SetText(ical.PropLocation, r.Details.Location)
		}

		if rule, ok := recurrence.RRule(r); ok {
			// RRULE is a RECUR value; SetText would tag it VALUE=TEXT
			// and escape the ";" and "," separators.
			p := ical.NewProp(ical.PropRecurrenceRule)
			p.Value = rule
			event.Props.Set(p)
		}

		if r.Details.PreReminderMinutes > 0 {
			event.Children = append(event.Children, newAlarm(r))
		}

		cal.Children = append(cal.Children, event.Component)
	}

	return ical.NewEncoder(w).Encode(cal)
}

// newAlarm builds a VALARM component firing PreReminderMinutes before
// the event start.
func newAlarm(r models.Reminder) *ical.Component {
	alarm := &ical.Component{
		Name:  ical.CompAlarm,
		Props: make(ical.Props),
	}
	alarm.Props.SetText(ical.PropAction, "DISPLAY")
	alarm.Props.SetText(ical.PropDescription, r.AlertMessage())

	trigger := ical.NewProp(ical.PropTrigger)
	trigger.Value = fmt.Sprintf("-PT%dM", r.Details.PreReminderMinutes)
	alarm.Props.Set(trigger)

	return alarm
}
