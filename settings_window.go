package main

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

type SettingsWindow struct {
	window fyne.Window
	mm     *MedMinder
	config *Config
	onSave func(*Config)

	// General tab
	autoStartCheck *widget.Check
	holdTimeSelect *widget.Select

	// Voice & Sound tab
	ttsCheck       *widget.Check
	languageEntry  *widget.Entry
	alarmPathEntry *widget.Entry

	// AI tab
	apiKeyEntry  *widget.Entry
	baseURLEntry *widget.Entry
	modelEntry   *widget.Entry

	// UI state
	hasUnsavedChanges bool
	saveStatusLabel   *widget.Label
	saveButton        *widget.Button
}

func NewSettingsWindow(mm *MedMinder, onSave func(*Config)) *SettingsWindow {
	sw := &SettingsWindow{
		mm:     mm,
		config: mm.config,
		onSave: onSave,
	}

	sw.window = mm.app.NewWindow("MedMinder - Settings")
	sw.buildUI()

	return sw
}

func (sw *SettingsWindow) buildUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("General", sw.buildGeneralTab()),
		container.NewTabItem("Voice & Sound", sw.buildVoiceTab()),
		container.NewTabItem("AI", sw.buildAITab()),
	)

	sw.saveStatusLabel = widget.NewLabel("")
	sw.saveStatusLabel.Importance = widget.SuccessImportance

	sw.saveButton = widget.NewButton("Save", func() {
		sw.save()
	})
	sw.saveButton.Importance = widget.HighImportance
	sw.saveButton.Disable() // Enabled once something changes

	previewButton := widget.NewButton("Preview Alert", func() {
		sw.mm.alerts.Raise("Medication Reminder",
			"This is a preview of how reminders will appear. Hold the Dismiss button to stop it.")
	})

	closeButton := widget.NewButton("Close", func() {
		sw.handleClose()
	})

	buttonRow := container.NewBorder(
		nil,
		nil,
		container.NewHBox(sw.saveButton, sw.saveStatusLabel),
		container.NewHBox(previewButton, closeButton),
		container.NewHBox(),
	)

	content := container.NewBorder(
		nil,
		container.NewPadded(buttonRow),
		nil,
		nil,
		tabs,
	)

	sw.window.SetContent(content)
	sw.window.Resize(fyne.NewSize(620, 480))
	sw.window.CenterOnScreen()

	sw.window.SetCloseIntercept(func() {
		sw.handleClose()
	})
}

func (sw *SettingsWindow) buildGeneralTab() fyne.CanvasObject {
	sw.autoStartCheck = widget.NewCheck("Start on System Boot", func(bool) {
		sw.markChanged()
	})
	sw.autoStartCheck.SetChecked(sw.config.AutoStart)

	holdOptions := []string{"1 s", "2 s", "3 s", "5 s"}
	sw.holdTimeSelect = widget.NewSelect(holdOptions, func(string) {
		sw.markChanged()
	})
	sw.holdTimeSelect.SetSelected(fmt.Sprintf("%d s", sw.config.HoldTimeSeconds))

	autoStartLabel := widget.NewLabel("Auto Start:")
	autoStartHelp := widget.NewLabel("Launch MedMinder automatically when your system starts")
	autoStartHelp.Importance = widget.MediumImportance

	holdLabel := widget.NewLabel("Dismiss Hold Time:")
	holdHelp := widget.NewLabel("How long the Dismiss button must be held to stop an alert")
	holdHelp.Wrapping = fyne.TextWrapWord
	holdHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(autoStartLabel, autoStartHelp),
		sw.autoStartCheck,

		container.NewVBox(holdLabel, holdHelp),
		sw.holdTimeSelect,
	)

	content := container.NewVBox(
		widget.NewLabel("General Settings"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) buildVoiceTab() fyne.CanvasObject {
	sw.ttsCheck = widget.NewCheck("Speak reminders aloud", func(bool) {
		sw.markChanged()
	})
	sw.ttsCheck.SetChecked(sw.config.TTSEnabled)

	sw.languageEntry = widget.NewEntry()
	sw.languageEntry.SetText(sw.config.SpeechLanguage)
	sw.languageEntry.OnChanged = func(string) { sw.markChanged() }

	sw.alarmPathEntry = widget.NewEntry()
	sw.alarmPathEntry.SetText(sw.config.AlarmSoundPath)
	sw.alarmPathEntry.SetPlaceHolder("Built-in chime")
	sw.alarmPathEntry.OnChanged = func(string) { sw.markChanged() }

	browseButton := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			reader.Close()
			sw.alarmPathEntry.SetText(reader.URI().Path())
		}, sw.window)
	})

	ttsLabel := widget.NewLabel("Text-to-Speech:")
	ttsHelp := widget.NewLabel("Repeat the reminder message out loud until dismissed")
	ttsHelp.Importance = widget.MediumImportance

	languageLabel := widget.NewLabel("Speech Language:")
	languageHelp := widget.NewLabel("Language code for the spoken voice, e.g. en, de, fr")
	languageHelp.Importance = widget.MediumImportance

	alarmLabel := widget.NewLabel("Alarm Sound:")
	alarmHelp := widget.NewLabel("WAV file to loop during alerts; leave empty for the built-in chime")
	alarmHelp.Wrapping = fyne.TextWrapWord
	alarmHelp.Importance = widget.MediumImportance

	alarmContainer := container.NewBorder(nil, nil, nil, browseButton, sw.alarmPathEntry)

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(ttsLabel, ttsHelp),
		sw.ttsCheck,

		container.NewVBox(languageLabel, languageHelp),
		sw.languageEntry,

		container.NewVBox(alarmLabel, alarmHelp),
		alarmContainer,
	)

	content := container.NewVBox(
		widget.NewLabel("Voice & Sound"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) buildAITab() fyne.CanvasObject {
	sw.apiKeyEntry = widget.NewPasswordEntry()
	sw.apiKeyEntry.SetText(sw.config.AIAPIKey)
	sw.apiKeyEntry.OnChanged = func(string) { sw.markChanged() }

	sw.baseURLEntry = widget.NewEntry()
	sw.baseURLEntry.SetText(sw.config.AIBaseURL)
	sw.baseURLEntry.OnChanged = func(string) { sw.markChanged() }

	sw.modelEntry = widget.NewEntry()
	sw.modelEntry.SetText(sw.config.AIModel)
	sw.modelEntry.OnChanged = func(string) { sw.markChanged() }

	keyLabel := widget.NewLabel("API Key:")
	keyHelp := widget.NewLabel("Key for an OpenAI-compatible API, used for plain language reminders")
	keyHelp.Wrapping = fyne.TextWrapWord
	keyHelp.Importance = widget.MediumImportance

	urlLabel := widget.NewLabel("Base URL:")
	modelLabel := widget.NewLabel("Model:")

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(keyLabel, keyHelp),
		sw.apiKeyEntry,

		urlLabel,
		sw.baseURLEntry,

		modelLabel,
		sw.modelEntry,
	)

	content := container.NewVBox(
		widget.NewLabel("AI Parsing"),
		widget.NewSeparator(),
		form,
	)

	return container.NewPadded(container.NewVScroll(content))
}

func (sw *SettingsWindow) getConfigFromUI() *Config {
	holdTime := 3
	if sw.holdTimeSelect.Selected != "" {
		if val, err := strconv.Atoi(sw.holdTimeSelect.Selected[:1]); err == nil {
			holdTime = val
		}
	}

	return &Config{
		AutoStart:       sw.autoStartCheck.Checked,
		TTSEnabled:      sw.ttsCheck.Checked,
		SpeechLanguage:  sw.languageEntry.Text,
		AlarmSoundPath:  sw.alarmPathEntry.Text,
		HoldTimeSeconds: holdTime,
		AIAPIKey:        sw.apiKeyEntry.Text,
		AIBaseURL:       sw.baseURLEntry.Text,
		AIModel:         sw.modelEntry.Text,
	}
}

func (sw *SettingsWindow) save() {
	sw.saveButton.Disable()
	sw.saveStatusLabel.SetText("Saving...")
	sw.saveStatusLabel.Importance = widget.MediumImportance
	sw.saveStatusLabel.Refresh()

	newConfig := sw.getConfigFromUI()
	go func() {
		if err := setupAutostart(newConfig.AutoStart); err != nil {
			log.Printf("Error setting autostart: %v", err)
			fyne.Do(func() {
				sw.saveStatusLabel.SetText("Error: Failed to set autostart")
				sw.saveStatusLabel.Importance = widget.DangerImportance
				sw.saveStatusLabel.Refresh()
				sw.updateSaveButtonState()
			})
			return
		}

		if sw.onSave != nil {
			sw.onSave(newConfig)
		}
		sw.config = newConfig

		fyne.Do(func() {
			sw.hasUnsavedChanges = false
			sw.saveStatusLabel.SetText("Settings saved successfully")
			sw.saveStatusLabel.Importance = widget.SuccessImportance
			sw.saveStatusLabel.Refresh()
			sw.updateSaveButtonState()

			// Clear success message after 3 seconds
			go func() {
				time.Sleep(3 * time.Second)
				fyne.Do(func() {
					if sw.saveStatusLabel.Text == "Settings saved successfully" {
						sw.saveStatusLabel.SetText("")
						sw.saveStatusLabel.Refresh()
					}
				})
			}()
		})
	}()
}

func (sw *SettingsWindow) Show() {
	sw.window.Show()
}

func (sw *SettingsWindow) markChanged() {
	sw.hasUnsavedChanges = true
	sw.updateSaveButtonState()
}

func (sw *SettingsWindow) updateSaveButtonState() {
	if sw.saveButton != nil {
		if sw.hasUnsavedChanges {
			sw.saveButton.Enable()
		} else {
			sw.saveButton.Disable()
		}
	}
}

func (sw *SettingsWindow) handleClose() {
	if sw.hasActualChanges() {
		dialog.ShowConfirm("Unsaved Changes",
			"You have unsaved changes. Are you sure you want to close?",
			func(confirmed bool) {
				if confirmed {
					sw.window.Close()
				}
			}, sw.window)
	} else {
		sw.window.Close()
	}
}

// hasActualChanges checks if the current UI state differs from the saved config
func (sw *SettingsWindow) hasActualChanges() bool {
	current := sw.getConfigFromUI()
	return *current != *sw.config
}
