package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlake/med-minder/pkg/models"
)

func TestWriteICal(t *testing.T) {
	daily := models.NewReminder(models.KindMedication)
	daily.Title = "Take Metformin"
	daily.DateTime = time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	daily.Frequency = models.Frequency{Type: models.FrequencyDaily}
	daily.Details = models.Details{Dosage: "500mg"}

	weekly := models.NewReminder(models.KindMedication)
	weekly.Title = "Physio exercises"
	weekly.DateTime = time.Date(2026, 3, 2, 17, 0, 0, 0, time.Local)
	weekly.Frequency = models.Frequency{Type: models.FrequencyWeekly, Days: []int{1, 3, 5}}

	visit := models.NewReminder(models.KindAppointment)
	visit.Title = "Cardiology checkup"
	visit.DateTime = time.Date(2026, 3, 10, 14, 30, 0, 0, time.Local)
	visit.Details = models.Details{
		Location:           "Clinic 2",
		PreReminderMinutes: 30,
	}

	var buf bytes.Buffer
	require.NoError(t, writeICal(&buf, []models.Reminder{daily, weekly, visit}))
	out := buf.String()

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Take Metformin")
	assert.Contains(t, out, "RRULE:FREQ=DAILY")
	assert.Contains(t, out, "UID:"+daily.ID)
	assert.Contains(t, out, "Dosage: 500mg")

	// The rule value must stay a raw RECUR: no TEXT value tag and no
	// escaping of the ";" and "," separators.
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR")
	assert.NotContains(t, out, "RRULE;VALUE=TEXT")
	assert.NotContains(t, out, `\;`)

	assert.Contains(t, out, "SUMMARY:Cardiology checkup")
	assert.Contains(t, out, "LOCATION:Clinic 2")
	assert.Contains(t, out, "BEGIN:VALARM")
	assert.Contains(t, out, "TRIGGER:-PT30M")

	// One-shot reminders carry no recurrence rule.
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("RRULE")))
}

func TestWriteICalEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeICal(&buf, nil))

	out := buf.String()
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
