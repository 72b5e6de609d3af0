package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenlake/med-minder/pkg/models"
)

func testParser(t *testing.T) *Parser {
	t.Helper()
	p := New("test-key", "", "")
	p.now = func() time.Time {
		return time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local) // Monday
	}
	return p
}

func TestExtractJSON(t *testing.T) {
	raw, err := extractJSON("Sure! Here is the JSON:\n```json\n{\"title\":\"Aspirin\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"Aspirin"}`, raw)

	raw, err = extractJSON(`{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, raw)

	_, err = extractJSON("I could not parse that request.")
	assert.Error(t, err)
}

func TestFromResponseFullDraft(t *testing.T) {
	p := testParser(t)

	r, err := p.fromResponse(`{
		"title": "Take Metformin",
		"type": "medication",
		"date": "2026-03-03",
		"time": "08:00",
		"frequency": {"type": "daily"},
		"details": {"dosage": "500mg", "instructions": "with food"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Take Metformin", r.Title)
	assert.Equal(t, models.KindMedication, r.Kind)
	assert.Equal(t, models.FrequencyDaily, r.Frequency.Type)
	assert.Equal(t, "500mg", r.Details.Dosage)
	assert.True(t, r.IsActive)
	assert.NotEmpty(t, r.ID)

	want := time.Date(2026, 3, 3, 8, 0, 0, 0, time.Local)
	assert.True(t, r.DateTime.Equal(want), "got %v", r.DateTime)
}

func TestFromResponseAppointmentWithWeekly(t *testing.T) {
	p := testParser(t)

	r, err := p.fromResponse(`{
		"title": "Physio session",
		"type": "appointment",
		"date": "2026-03-04",
		"time": "16:15",
		"frequency": {"type": "weekly", "days": [3]},
		"details": {"doctor": "Dr. Lindqvist", "location": "Clinic 2", "preReminderMinutes": 30}
	}`)
	require.NoError(t, err)

	assert.Equal(t, models.KindAppointment, r.Kind)
	assert.Equal(t, []int{3}, r.Frequency.Days)
	assert.Equal(t, 30, r.Details.PreReminderMinutes)
}

func TestFromResponseDefaults(t *testing.T) {
	p := testParser(t)

	// No date, no time, unknown type and frequency.
	r, err := p.fromResponse(`{"title": "Drink water", "type": "habit", "frequency": {"type": "hourly"}}`)
	require.NoError(t, err)

	assert.Equal(t, models.KindMedication, r.Kind)
	assert.Equal(t, models.FrequencyOnce, r.Frequency.Type)

	// Falls back to "now" on the parser's clock.
	want := time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local)
	assert.True(t, r.DateTime.Equal(want), "got %v", r.DateTime)
}

func TestFromResponseErrors(t *testing.T) {
	p := testParser(t)

	_, err := p.fromResponse(`{"type": "medication"}`)
	assert.ErrorContains(t, err, "missing title")

	_, err = p.fromResponse(`{"title": "x", "date": "tomorrow"}`)
	assert.ErrorContains(t, err, "invalid date")

	_, err = p.fromResponse(`{"title": "x", "time": "8am"}`)
	assert.ErrorContains(t, err, "invalid time")

	_, err = p.fromResponse(`not json at all`)
	assert.Error(t, err)
}

func TestEveryXHoursDraft(t *testing.T) {
	p := testParser(t)

	r, err := p.fromResponse(`{
		"title": "Painkiller",
		"type": "medication",
		"date": "2026-03-02",
		"time": "09:00",
		"frequency": {"type": "every_x_hours", "everyXHours": 6}
	}`)
	require.NoError(t, err)

	assert.Equal(t, models.FrequencyEveryXHours, r.Frequency.Type)
	assert.Equal(t, 6, r.Frequency.Interval())
}
