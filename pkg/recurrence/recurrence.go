// Package recurrence computes the next firing instant for a reminder.
// All calculations use local wall-clock time at whole-minute granularity
// and strict "after" comparisons, so a reminder whose occurrence equals
// the reference instant rolls over to the next cycle instead of refiring.
package recurrence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"github.com/wrenlake/med-minder/pkg/models"
)

// weeklyScanDays bounds the weekly forward scan: one full week plus slack,
// so the loop terminates even if today's candidate is already past.
const weeklyScanDays = 14

// Next returns the first occurrence of r strictly after ref, or ok=false
// if the series has no future occurrence.
func Next(r models.Reminder, ref time.Time) (time.Time, bool) {
	anchor := r.DateTime.Truncate(time.Minute)

	switch r.Frequency.Type {
	case models.FrequencyOnce:
		if anchor.After(ref) {
			return anchor, true
		}
		return time.Time{}, false

	case models.FrequencyDaily:
		cand := atAnchorTime(ref, anchor)
		if !cand.After(ref) {
			cand = cand.AddDate(0, 0, 1)
		}
		return cand, true

	case models.FrequencyWeekly:
		days := r.Frequency.Days
		if len(days) == 0 {
			days = []int{int(anchor.Weekday())}
		}
		cand := atAnchorTime(ref, anchor)
		for i := 0; i < weeklyScanDays; i++ {
			if containsDay(days, int(cand.Weekday())) && cand.After(ref) {
				return cand, true
			}
			cand = cand.AddDate(0, 0, 1)
		}
		return time.Time{}, false

	case models.FrequencyEveryXHours:
		interval := time.Duration(r.Frequency.Interval()) * time.Hour
		cand := anchor
		for !cand.After(ref) {
			cand = cand.Add(interval)
		}
		return cand, true
	}

	return time.Time{}, false
}

// atAnchorTime builds a candidate on ref's date carrying the anchor's
// hour and minute, seconds zeroed.
func atAnchorTime(ref, anchor time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(),
		anchor.Hour(), anchor.Minute(), 0, 0, ref.Location())
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Describe returns a short human-readable summary of the recurrence,
// used by the reminder list and the system tray menu.
func Describe(r models.Reminder) string {
	anchor := r.DateTime
	clock := anchor.Format("15:04")

	switch r.Frequency.Type {
	case models.FrequencyOnce:
		return "Once at " + anchor.Format("Jan 2 15:04")
	case models.FrequencyDaily:
		return "Daily at " + clock
	case models.FrequencyWeekly:
		days := r.Frequency.Days
		if len(days) == 0 {
			days = []int{int(anchor.Weekday())}
		}
		sorted := append([]int(nil), days...)
		sort.Ints(sorted)
		names := make([]string, 0, len(sorted))
		for _, d := range sorted {
			if d >= 0 && d < len(weekdayNames) {
				names = append(names, weekdayNames[d])
			}
		}
		return fmt.Sprintf("Weekly on %s at %s", strings.Join(names, ", "), clock)
	case models.FrequencyEveryXHours:
		n := r.Frequency.Interval()
		if n == 1 {
			return "Every hour from " + clock
		}
		return fmt.Sprintf("Every %d hours from %s", n, clock)
	}
	return string(r.Frequency.Type)
}

// rruleWeekdays maps weekday numbers (0=Sunday) to rrule weekday constants.
var rruleWeekdays = []rrule.Weekday{
	rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA,
}

// RRule converts the reminder's recurrence to an RFC 5545 RRULE string
// for calendar export. Once reminders have no rule (ok=false).
func RRule(r models.Reminder) (string, bool) {
	opt := rrule.ROption{Dtstart: r.DateTime.Truncate(time.Minute)}

	switch r.Frequency.Type {
	case models.FrequencyOnce:
		return "", false
	case models.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case models.FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
		days := r.Frequency.Days
		if len(days) == 0 {
			days = []int{int(r.DateTime.Weekday())}
		}
		for _, d := range days {
			if d >= 0 && d < len(rruleWeekdays) {
				opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
			}
		}
	case models.FrequencyEveryXHours:
		opt.Freq = rrule.HOURLY
		opt.Interval = r.Frequency.Interval()
	default:
		return "", false
	}

	return opt.RRuleString(), true
}
