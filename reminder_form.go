package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/wrenlake/med-minder/pkg/models"
)

var weekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var frequencyOptions = map[string]models.FrequencyType{
	"Once":          models.FrequencyOnce,
	"Daily":         models.FrequencyDaily,
	"Weekly":        models.FrequencyWeekly,
	"Every X hours": models.FrequencyEveryXHours,
}

func frequencyLabel(t models.FrequencyType) string {
	for label, ft := range frequencyOptions {
		if ft == t {
			return label
		}
	}
	return "Once"
}

// showReminderForm opens the add/edit dialog for a reminder. The passed
// reminder carries either a fresh draft or the stored values.
func (rw *RemindersWindow) showReminderForm(r *models.Reminder) {
	titleEntry := widget.NewEntry()
	titleEntry.SetText(r.Title)

	kindSelect := widget.NewSelect([]string{"Medication", "Appointment"}, nil)
	if r.Kind == models.KindAppointment {
		kindSelect.SetSelected("Appointment")
	} else {
		kindSelect.SetSelected("Medication")
	}

	messageEntry := widget.NewEntry()
	messageEntry.SetPlaceHolder("Reminder: " + r.Title)
	messageEntry.SetText(r.NotificationMessage)

	dateEntry := widget.NewEntry()
	dateEntry.SetText(r.DateTime.Format("2006-01-02"))
	timeEntry := widget.NewEntry()
	timeEntry.SetText(r.DateTime.Format("15:04"))

	freqSelect := widget.NewSelect(
		[]string{"Once", "Daily", "Weekly", "Every X hours"}, nil)
	freqSelect.SetSelected(frequencyLabel(r.Frequency.Type))

	dayChecks := make([]*widget.Check, 7)
	dayRow := container.NewHBox()
	for i, label := range weekdayLabels {
		dayChecks[i] = widget.NewCheck(label, nil)
		dayChecks[i].SetChecked(containsInt(r.Frequency.Days, i))
		dayRow.Add(dayChecks[i])
	}

	hoursEntry := widget.NewEntry()
	if r.Frequency.EveryXHours > 0 {
		hoursEntry.SetText(strconv.Itoa(r.Frequency.EveryXHours))
	} else {
		hoursEntry.SetPlaceHolder(strconv.Itoa(models.DefaultEveryXHours))
	}

	// Detail fields
	dosageEntry := widget.NewEntry()
	dosageEntry.SetText(r.Details.Dosage)
	instructionsEntry := widget.NewEntry()
	instructionsEntry.SetText(r.Details.Instructions)
	doctorEntry := widget.NewEntry()
	doctorEntry.SetText(r.Details.Doctor)
	locationEntry := widget.NewEntry()
	locationEntry.SetText(r.Details.Location)
	preReminderEntry := widget.NewEntry()
	if r.Details.PreReminderMinutes > 0 {
		preReminderEntry.SetText(strconv.Itoa(r.Details.PreReminderMinutes))
	}

	items := []*widget.FormItem{
		widget.NewFormItem("Title", titleEntry),
		widget.NewFormItem("Type", kindSelect),
		widget.NewFormItem("Message", messageEntry),
		widget.NewFormItem("Date", dateEntry),
		widget.NewFormItem("Time", timeEntry),
		widget.NewFormItem("Repeat", freqSelect),
		widget.NewFormItem("Days", dayRow),
		widget.NewFormItem("Interval (hours)", hoursEntry),
		widget.NewFormItem("Dosage", dosageEntry),
		widget.NewFormItem("Instructions", instructionsEntry),
		widget.NewFormItem("Doctor", doctorEntry),
		widget.NewFormItem("Location", locationEntry),
		widget.NewFormItem("Remind before (min)", preReminderEntry),
	}

	formTitle := "Add Reminder"
	if _, exists := rw.mm.store.Get(r.ID); exists {
		formTitle = "Edit Reminder"
	}

	d := dialog.NewForm(formTitle, "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}

		if titleEntry.Text == "" {
			dialog.ShowError(fmt.Errorf("title is required"), rw.window)
			return
		}

		at, err := parseFormDateTime(dateEntry.Text, timeEntry.Text)
		if err != nil {
			dialog.ShowError(err, rw.window)
			return
		}

		r.Title = titleEntry.Text
		r.NotificationMessage = messageEntry.Text
		r.DateTime = at
		if kindSelect.Selected == "Appointment" {
			r.Kind = models.KindAppointment
		} else {
			r.Kind = models.KindMedication
		}

		r.Frequency = models.Frequency{Type: frequencyOptions[freqSelect.Selected]}
		if r.Frequency.Type == models.FrequencyWeekly {
			days := []int{}
			for i, check := range dayChecks {
				if check.Checked {
					days = append(days, i)
				}
			}
			r.Frequency.Days = days
		}
		if r.Frequency.Type == models.FrequencyEveryXHours && hoursEntry.Text != "" {
			if hours, err := strconv.Atoi(hoursEntry.Text); err == nil && hours >= 1 {
				r.Frequency.EveryXHours = hours
			}
		}

		r.Details = models.Details{
			Dosage:       dosageEntry.Text,
			Instructions: instructionsEntry.Text,
			Doctor:       doctorEntry.Text,
			Location:     locationEntry.Text,
		}
		if preReminderEntry.Text != "" {
			if mins, err := strconv.Atoi(preReminderEntry.Text); err == nil && mins > 0 {
				r.Details.PreReminderMinutes = mins
			}
		}

		rw.mm.store.Upsert(*r)
		rw.mm.refresh()
	}, rw.window)

	d.Resize(fyne.NewSize(480, 600))
	d.Show()
}

func parseFormDateTime(dateStr, timeStr string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be yyyy-mm-dd")
	}
	tod, err := time.ParseInLocation("15:04", timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must be HH:MM (24h)")
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		tod.Hour(), tod.Minute(), 0, 0, time.Local), nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
