package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/wrenlake/med-minder/pkg/alert"
	"github.com/wrenlake/med-minder/pkg/models"
	"github.com/wrenlake/med-minder/pkg/parse"
	"github.com/wrenlake/med-minder/pkg/recurrence"
)

// RemindersWindow is the main management window: the reminder list, the
// natural language entry box and the notification permission control.
type RemindersWindow struct {
	window fyne.Window
	mm     *MedMinder

	list     *widget.List
	data     []models.Reminder
	nlEntry  *widget.Entry
	parseBtn *widget.Button
	permBtn  *widget.Button
}

func NewRemindersWindow(mm *MedMinder) *RemindersWindow {
	rw := &RemindersWindow{
		mm:   mm,
		data: mm.store.All(),
	}

	rw.window = mm.app.NewWindow("MedMinder - Reminders")
	rw.buildUI()

	return rw
}

func (rw *RemindersWindow) buildUI() {
	rw.list = widget.NewList(
		func() int {
			return len(rw.data)
		},
		func() fyne.CanvasObject {
			title := widget.NewLabel("title")
			title.TextStyle = fyne.TextStyle{Bold: true}
			sub := widget.NewLabel("schedule")
			sub.Importance = widget.MediumImportance

			toggle := widget.NewCheck("", nil)
			edit := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), nil)
			del := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)

			return container.NewBorder(nil, nil,
				toggle,
				container.NewHBox(edit, del),
				container.NewVBox(title, sub),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(rw.data) {
				return
			}
			r := rw.data[id]

			border := obj.(*fyne.Container)
			toggle := border.Objects[1].(*widget.Check)
			buttons := border.Objects[2].(*fyne.Container)
			labels := border.Objects[0].(*fyne.Container)

			title := labels.Objects[0].(*widget.Label)
			sub := labels.Objects[1].(*widget.Label)
			edit := buttons.Objects[0].(*widget.Button)
			del := buttons.Objects[1].(*widget.Button)

			title.SetText(r.Title)
			sub.SetText(rw.scheduleText(r))

			toggle.OnChanged = nil
			toggle.SetChecked(r.IsActive)
			toggle.OnChanged = func(bool) {
				rw.mm.store.Toggle(r.ID)
				rw.mm.refresh()
			}

			edit.OnTapped = func() {
				rw.showReminderForm(&r)
			}
			del.OnTapped = func() {
				dialog.ShowConfirm("Delete Reminder",
					fmt.Sprintf("Delete %q?", r.Title),
					func(confirmed bool) {
						if confirmed {
							rw.mm.store.Delete(r.ID)
							rw.mm.refresh()
						}
					}, rw.window)
			}
		},
	)

	addMedication := widget.NewButtonWithIcon("Medication", theme.ContentAddIcon(), func() {
		r := models.NewReminder(models.KindMedication)
		rw.showReminderForm(&r)
	})
	addAppointment := widget.NewButtonWithIcon("Appointment", theme.ContentAddIcon(), func() {
		r := models.NewReminder(models.KindAppointment)
		rw.showReminderForm(&r)
	})
	exportBtn := widget.NewButtonWithIcon("Export iCal", theme.DownloadIcon(), func() {
		rw.exportICal()
	})

	rw.permBtn = widget.NewButton("", func() {
		rw.requestPermission()
	})
	rw.updatePermissionButton()

	toolbar := container.NewBorder(nil, nil,
		container.NewHBox(addMedication, addAppointment, exportBtn),
		rw.permBtn,
	)

	// Natural language box
	rw.nlEntry = widget.NewEntry()
	rw.nlEntry.SetPlaceHolder("e.g. remind me to take aspirin every morning at 8")
	rw.parseBtn = widget.NewButton("Add with AI", func() {
		rw.parseNaturalLanguage()
	})
	if !rw.mm.config.AIConfigured() {
		rw.parseBtn.Disable()
		rw.nlEntry.SetPlaceHolder("Set an API key in Settings to add reminders in plain language")
	}
	nlBox := container.NewBorder(nil, nil, nil, rw.parseBtn, rw.nlEntry)

	content := container.NewBorder(
		container.NewVBox(toolbar, widget.NewSeparator(), nlBox, widget.NewSeparator()),
		nil, nil, nil,
		rw.list,
	)

	rw.window.SetContent(container.NewPadded(content))
	rw.window.Resize(fyne.NewSize(640, 520))
	rw.window.CenterOnScreen()
}

// scheduleText renders one reminder's schedule line for the list.
func (rw *RemindersWindow) scheduleText(r models.Reminder) string {
	desc := recurrence.Describe(r)
	if !r.IsActive {
		return desc + " (paused)"
	}
	if next, ok := recurrence.Next(r, time.Now()); ok {
		return fmt.Sprintf("%s - next %s", desc, next.Format("Mon Jan 2, 3:04 PM"))
	}
	return desc + " (finished)"
}

// Refresh reloads the list from the store.
func (rw *RemindersWindow) Refresh() {
	rw.data = rw.mm.store.All()
	fyne.Do(func() {
		rw.list.Refresh()
	})
}

func (rw *RemindersWindow) Show() {
	rw.window.Show()
}

func (rw *RemindersWindow) updatePermissionButton() {
	switch rw.mm.alerts.Permission() {
	case alert.PermissionGranted:
		rw.permBtn.SetText("Notifications On")
		rw.permBtn.SetIcon(theme.ConfirmIcon())
	case alert.PermissionDenied:
		rw.permBtn.SetText("Notifications Off")
		rw.permBtn.SetIcon(theme.CancelIcon())
	default:
		rw.permBtn.SetText("Enable Notifications")
		rw.permBtn.SetIcon(theme.InfoIcon())
	}
}

func (rw *RemindersWindow) requestPermission() {
	if rw.mm.alerts.Permission() == alert.PermissionGranted {
		rw.mm.alerts.RequestPermission(false)
		rw.updatePermissionButton()
		return
	}

	dialog.ShowConfirm("Enable Notifications",
		"Show a system notification when a reminder is due?",
		func(granted bool) {
			rw.mm.alerts.RequestPermission(granted)
			rw.updatePermissionButton()
		}, rw.window)
}

// parseNaturalLanguage sends the entry text to the AI parser and opens
// the form prefilled with the result so the user can confirm it.
func (rw *RemindersWindow) parseNaturalLanguage() {
	text := rw.nlEntry.Text
	if text == "" {
		return
	}

	rw.parseBtn.Disable()
	rw.parseBtn.SetText("Parsing...")

	cfg := rw.mm.config
	parser := parse.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r, err := parser.Parse(ctx, text)

		fyne.Do(func() {
			rw.parseBtn.SetText("Add with AI")
			rw.parseBtn.Enable()

			if err != nil {
				log.Printf("Natural language parse failed: %v", err)
				dialog.ShowError(fmt.Errorf("could not parse reminder: %w", err), rw.window)
				return
			}

			rw.nlEntry.SetText("")
			rw.showReminderForm(&r)
		})
	}()
}

// exportICal writes all reminders to a user-chosen .ics file.
func (rw *RemindersWindow) exportICal() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, rw.window)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := writeICal(writer, rw.mm.store.All()); err != nil {
			log.Printf("iCal export failed: %v", err)
			dialog.ShowError(fmt.Errorf("export failed: %w", err), rw.window)
			return
		}
		log.Printf("Exported %d reminders to %s", rw.mm.store.Count(), writer.URI().Path())
	}, rw.window)
}
