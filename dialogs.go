package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/wrenlake/med-minder/pkg/models"
)

// showQuickReminderDialog creates a one-shot countdown reminder from the
// tray without opening the full reminders window.
func (mm *MedMinder) showQuickReminderDialog() {
	win := mm.app.NewWindow("Quick Reminder")
	win.Resize(fyne.NewSize(380, 220))

	titleEntry := widget.NewEntry()
	titleEntry.SetPlaceHolder("Take painkiller")
	hourEntry := widget.NewEntry()
	hourEntry.SetPlaceHolder("0")
	minEntry := widget.NewEntry()
	minEntry.SetPlaceHolder("30")

	items := []*widget.FormItem{
		widget.NewFormItem("Title", titleEntry),
		widget.NewFormItem("Hours from now", hourEntry),
		widget.NewFormItem("Minutes from now", minEntry),
	}

	dialog.ShowForm("Quick Reminder", "Create", "Cancel", items, func(confirmed bool) {
		defer win.Close()
		if !confirmed {
			return
		}

		hours := 0
		mins := 0
		if hourEntry.Text != "" {
			fmt.Sscanf(hourEntry.Text, "%d", &hours)
		}
		if minEntry.Text != "" {
			fmt.Sscanf(minEntry.Text, "%d", &mins)
		}

		if hours < 0 || mins < 0 {
			dialog.ShowError(fmt.Errorf("hours and minutes must be positive numbers"), win)
			return
		}
		if hours == 0 && mins == 0 {
			dialog.ShowError(fmt.Errorf("please set at least 1 minute"), win)
			return
		}

		r := models.NewReminder(models.KindMedication)
		r.Title = titleEntry.Text
		if r.Title == "" {
			r.Title = fmt.Sprintf("Quick reminder (%dh %dm)", hours, mins)
		}
		r.DateTime = time.Now().Add(time.Duration(hours*60+mins) * time.Minute)

		mm.store.Upsert(r)
		mm.refresh()
	}, win)

	win.Show()
}
