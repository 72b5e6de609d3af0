package recurrence

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrenlake/med-minder/pkg/models"
)

func mkReminder(anchor time.Time, freq models.Frequency) models.Reminder {
	return models.Reminder{
		ID:        "test",
		Kind:      models.KindMedication,
		Title:     "Metformin",
		DateTime:  anchor,
		Frequency: freq,
		IsActive:  true,
	}
}

func TestOnceBeforeAnchor(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyOnce})

	next, ok := Next(r, anchor.Add(-time.Hour))
	require.True(t, ok)
	assert.Equal(t, anchor, next)
}

func TestOnceExhausted(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyOnce})

	_, ok := Next(r, anchor.Add(time.Second))
	assert.False(t, ok)

	// Reference exactly at the anchor is not "in the future".
	_, ok = Next(r, anchor)
	assert.False(t, ok)
}

func TestOnceDropsSeconds(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 8, 0, 42, 500, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyOnce})

	next, ok := Next(r, anchor.Add(-time.Hour))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local), next)
}

func TestDailySameDay(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyDaily})

	ref := time.Date(2024, 3, 5, 7, 30, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.Local), next)
}

func TestDailyRollsToTomorrow(t *testing.T) {
	anchor := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyDaily})

	// One second past today's slot must schedule tomorrow's.
	ref := time.Date(2024, 3, 1, 8, 0, 1, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 0, time.Local), next)
}

func TestDailyStableTimeOfDay(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 21, 45, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyDaily})

	refs := []time.Time{
		time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local),
		time.Date(2024, 2, 10, 21, 44, 59, 0, time.Local),
		time.Date(2024, 2, 10, 21, 45, 0, 0, time.Local),
		time.Date(2024, 6, 30, 23, 59, 0, 0, time.Local),
	}
	for _, ref := range refs {
		next, ok := Next(r, ref)
		require.True(t, ok)
		assert.True(t, next.After(ref), "next must be strictly after ref")
		assert.Equal(t, 21, next.Hour())
		assert.Equal(t, 45, next.Minute())
		assert.Equal(t, 0, next.Second())
	}
}

func TestWeeklySetMembership(t *testing.T) {
	// Monday anchor at 09:00, Mon/Wed/Fri set.
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local) // a Monday
	r := mkReminder(anchor, models.Frequency{
		Type: models.FrequencyWeekly,
		Days: []int{1, 3, 5},
	})

	// Monday 10:00 -> Wednesday 09:00 the same week.
	ref := time.Date(2024, 1, 1, 10, 0, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local), next)
	assert.Equal(t, time.Wednesday, next.Weekday())
}

func TestWeeklyDefaultsToAnchorWeekday(t *testing.T) {
	anchor := time.Date(2024, 1, 2, 14, 0, 0, 0, time.Local) // a Tuesday
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyWeekly})

	ref := time.Date(2024, 1, 2, 15, 0, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 9, 14, 0, 0, 0, time.Local), next)
}

func TestWeeklyWrapsToNextWeek(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{
		Type: models.FrequencyWeekly,
		Days: []int{1}, // Mondays only
	})

	// Monday 09:00 exactly -> skipped, next Monday.
	ref := time.Date(2024, 1, 8, 9, 0, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.Local), next)
}

func TestHourlyPhaseLockedToAnchor(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{
		Type:        models.FrequencyEveryXHours,
		EveryXHours: 4,
	})

	// 05:30 lands between the 04:00 and 08:00 slots; next is 08:00, not 09:30.
	ref := time.Date(2024, 1, 1, 5, 30, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local), next)
}

func TestHourlyFutureAnchorReturnsAnchor(t *testing.T) {
	anchor := time.Date(2024, 1, 2, 12, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{
		Type:        models.FrequencyEveryXHours,
		EveryXHours: 6,
	})

	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, anchor, next)
}

func TestHourlyDefaultInterval(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyEveryXHours})

	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	next, ok := Next(r, ref)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 4, 0, 0, 0, time.Local), next)
}

func TestMonotonicity(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 8, 15, 0, 0, time.Local)
	freqs := []models.Frequency{
		{Type: models.FrequencyOnce},
		{Type: models.FrequencyDaily},
		{Type: models.FrequencyWeekly, Days: []int{0, 2, 6}},
		{Type: models.FrequencyEveryXHours, EveryXHours: 7},
	}

	ref := time.Date(2023, 12, 25, 0, 0, 0, 0, time.Local)
	for i := 0; i < 200; i++ {
		for _, f := range freqs {
			next, ok := Next(mkReminder(anchor, f), ref)
			if ok {
				assert.True(t, next.After(ref), "freq %s: %s not after %s", f.Type, next, ref)
			}
		}
		ref = ref.Add(13*time.Hour + 7*time.Minute)
	}
}

func TestDescribe(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

	r := mkReminder(anchor, models.Frequency{Type: models.FrequencyDaily})
	assert.Equal(t, "Daily at 09:00", Describe(r))

	r = mkReminder(anchor, models.Frequency{Type: models.FrequencyWeekly, Days: []int{5, 1}})
	assert.Equal(t, "Weekly on Mon, Fri at 09:00", Describe(r))

	r = mkReminder(anchor, models.Frequency{Type: models.FrequencyEveryXHours, EveryXHours: 4})
	assert.Equal(t, "Every 4 hours from 09:00", Describe(r))
}

func TestRRuleConversion(t *testing.T) {
	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

	_, ok := RRule(mkReminder(anchor, models.Frequency{Type: models.FrequencyOnce}))
	assert.False(t, ok)

	rule, ok := RRule(mkReminder(anchor, models.Frequency{Type: models.FrequencyDaily}))
	require.True(t, ok)
	assert.Contains(t, rule, "FREQ=DAILY")

	rule, ok = RRule(mkReminder(anchor, models.Frequency{
		Type: models.FrequencyWeekly,
		Days: []int{1, 3, 5},
	}))
	require.True(t, ok)
	assert.Contains(t, rule, "FREQ=WEEKLY")
	for _, day := range []string{"MO", "WE", "FR"} {
		assert.True(t, strings.Contains(rule, day), "rule %q missing %s", rule, day)
	}

	rule, ok = RRule(mkReminder(anchor, models.Frequency{
		Type:        models.FrequencyEveryXHours,
		EveryXHours: 4,
	}))
	require.True(t, ok)
	assert.Contains(t, rule, "FREQ=HOURLY")
	assert.Contains(t, rule, "INTERVAL=4")
}
