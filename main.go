package main

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/wrenlake/med-minder/pkg/alert"
	"github.com/wrenlake/med-minder/pkg/audio"
	"github.com/wrenlake/med-minder/pkg/models"
	"github.com/wrenlake/med-minder/pkg/platform"
	"github.com/wrenlake/med-minder/pkg/scheduler"
	"github.com/wrenlake/med-minder/pkg/speech"
	"github.com/wrenlake/med-minder/pkg/store"
)

type MedMinder struct {
	app       fyne.App
	config    *Config
	store     *store.ReminderStore
	scheduler *scheduler.Scheduler
	alerts    *alert.Controller

	remindersWindow *RemindersWindow
	settingsWindow  *SettingsWindow
}

func main() {
	mm := &MedMinder{
		app: app.NewWithID("com.wrenlake.medminder"),
	}

	if err := mm.initialize(); err != nil {
		log.Fatal(err)
	}

	mm.run()
}

func (mm *MedMinder) initialize() error {
	mm.config = loadConfig(mm.app)

	// Sync autostart state with config on startup
	if err := setupAutostart(mm.config.AutoStart); err != nil {
		log.Printf("Warning: failed to setup autostart: %v", err)
	}

	saveConfig(mm.app, mm.config)

	mm.store = store.NewReminderStore(mm.app.Preferences())

	mm.alerts = alert.NewController(
		&appNotifier{app: mm.app},
		audio.NewAlarm(mm.config.AlarmSoundPath),
		speech.NewSpeaker(mm.config.TTSEnabled, mm.config.SpeechLanguage),
		&fullscreenIndicator{mm: mm},
		mm.app.Preferences(),
	)

	mm.scheduler = scheduler.New(mm.onReminderDue)

	mm.setupSystemTray()
	mm.refresh()

	return nil
}

func (mm *MedMinder) run() {
	mm.app.Lifecycle().SetOnStarted(func() {
		platform.SetActivationPolicy()
	})
	mm.app.Run()
}

// refresh re-reads the stored reminders, rebuilds the timer set and
// redraws the tray menu. Called after every store mutation.
func (mm *MedMinder) refresh() {
	mm.scheduler.Synchronize(mm.store.All())
	mm.updateSystemTrayMenu()
	if mm.remindersWindow != nil {
		mm.remindersWindow.Refresh()
	}
}

// onReminderDue runs on a timer goroutine when a reminder's occurrence
// arrives.
func (mm *MedMinder) onReminderDue(r models.Reminder, title, message string) {
	mm.alerts.Raise(title, message)

	// Recurring reminders were already re-armed; redraw the tray so the
	// next occurrence shows up.
	mm.updateSystemTrayMenu()
}

// rebuildAlertChannels recreates the audio and speech channels after a
// settings change.
func (mm *MedMinder) rebuildAlertChannels() {
	mm.alerts.Dismiss()
	mm.alerts = alert.NewController(
		&appNotifier{app: mm.app},
		audio.NewAlarm(mm.config.AlarmSoundPath),
		speech.NewSpeaker(mm.config.TTSEnabled, mm.config.SpeechLanguage),
		&fullscreenIndicator{mm: mm},
		mm.app.Preferences(),
	)
}

func (mm *MedMinder) showRemindersWindow() {
	if mm.remindersWindow != nil && mm.remindersWindow.window != nil {
		mm.remindersWindow.window.RequestFocus()
		mm.remindersWindow.window.Show()
		return
	}

	mm.remindersWindow = NewRemindersWindow(mm)
	mm.remindersWindow.window.SetOnClosed(func() {
		mm.remindersWindow = nil
	})
	mm.remindersWindow.Show()
}

func (mm *MedMinder) showSettingsWindow() {
	if mm.settingsWindow != nil && mm.settingsWindow.window != nil {
		mm.settingsWindow.window.RequestFocus()
		mm.settingsWindow.window.Show()
		return
	}

	mm.settingsWindow = NewSettingsWindow(mm, func(newConfig *Config) {
		mm.config = newConfig
		saveConfig(mm.app, mm.config)

		if err := setupAutostart(mm.config.AutoStart); err != nil {
			log.Printf("Warning: failed to setup autostart: %v", err)
		}

		mm.rebuildAlertChannels()
	})
	mm.settingsWindow.window.SetOnClosed(func() {
		mm.settingsWindow = nil
	})
	mm.settingsWindow.Show()
}

func (mm *MedMinder) quit() {
	mm.scheduler.Close()
	mm.alerts.Dismiss()
	mm.app.Quit()
}

// appNotifier sends system notifications through the fyne app.
type appNotifier struct {
	app fyne.App
}

func (n *appNotifier) Notify(title, message string) error {
	n.app.SendNotification(fyne.NewNotification(title, message))
	return nil
}
