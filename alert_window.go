package main

import (
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"golang.design/x/hotkey"

	"github.com/wrenlake/med-minder/pkg/platform"
)

// AlertWindow is the fullscreen visual channel of an alert. Sound and
// speech are driven by the alert controller; this window only displays
// the text and hosts the hold-to-dismiss button.
type AlertWindow struct {
	window          fyne.Window
	app             fyne.App
	title           string
	message         string
	holdTimeSeconds int
	onDismiss       func()

	dismissProgress float64
	dismissTicker   *time.Ticker
	dismissHeld     bool
	cmdQHotkey      *hotkey.Hotkey
	stopMonitoring  chan struct{}
}

func NewAlertWindow(app fyne.App, title, message string, holdTimeSeconds int, onDismiss func()) *AlertWindow {
	aw := &AlertWindow{
		app:             app,
		title:           title,
		message:         message,
		holdTimeSeconds: holdTimeSeconds,
		onDismiss:       onDismiss,
		stopMonitoring:  make(chan struct{}),
	}

	// Create window and build UI on the main Fyne thread
	fyne.Do(func() {
		aw.window = app.NewWindow(title)
		aw.window.SetFullScreen(true)
		aw.buildUI()

		// Register Cmd+Q hotkey when window is focused
		aw.registerCmdQPrevention()

		// Monitor window focus and refocus when needed
		aw.setupFocusMonitoring()

		aw.window.SetOnClosed(func() {
			close(aw.stopMonitoring)

			// Unregister hotkey when window is closed
			if aw.cmdQHotkey != nil {
				aw.cmdQHotkey.Unregister()
			}
		})
	})

	return aw
}

func (aw *AlertWindow) buildUI() {
	title := canvas.NewText(aw.title, nil)
	title.TextSize = 32
	title.Alignment = fyne.TextAlignCenter

	timeLabel := widget.NewLabel(time.Now().Format("3:04 PM"))
	timeLabel.Alignment = fyne.TextAlignCenter

	message := widget.NewLabel(aw.message)
	message.Wrapping = fyne.TextWrapWord
	message.Alignment = fyne.TextAlignCenter

	var dismissButton *HoldButton
	dismissButton = NewHoldButton(fmt.Sprintf("Dismiss (Hold %ds)", aw.holdTimeSeconds), func() {
		aw.startDismissProgress(dismissButton)
	}, func() {
		aw.stopDismissProgress(dismissButton)
	})

	content := container.NewVBox(
		container.NewPadded(title),
		timeLabel,
		widget.NewSeparator(),
		container.NewPadded(message),
		widget.NewSeparator(),
		container.NewCenter(dismissButton),
	)

	aw.window.SetContent(container.NewPadded(container.NewCenter(content)))
}

func (aw *AlertWindow) startDismissProgress(button *HoldButton) {
	if aw.dismissHeld {
		return
	}

	aw.dismissHeld = true
	aw.dismissProgress = 0
	fyne.Do(func() {
		button.SetProgress(0)
	})

	tickInterval := 50 * time.Millisecond
	totalTicks := float64(aw.holdTimeSeconds*1000) / float64(tickInterval.Milliseconds())
	progressIncrement := 1.0 / totalTicks

	aw.dismissTicker = time.NewTicker(tickInterval)

	go func() {
		for range aw.dismissTicker.C {
			if !aw.dismissHeld {
				return
			}

			aw.dismissProgress += progressIncrement
			currentProgress := aw.dismissProgress

			fyne.Do(func() {
				button.SetProgress(currentProgress)
			})

			if currentProgress >= 1.0 {
				aw.dismissTicker.Stop()
				if aw.onDismiss != nil {
					aw.onDismiss()
				}
				fyne.Do(func() {
					aw.window.Close()
				})
				return
			}
		}
	}()
}

func (aw *AlertWindow) stopDismissProgress(button *HoldButton) {
	aw.dismissHeld = false
	if aw.dismissTicker != nil {
		aw.dismissTicker.Stop()
	}
	aw.dismissProgress = 0
	fyne.Do(func() {
		button.SetProgress(0)
	})
}

func (aw *AlertWindow) Show() {
	fyne.Do(func() {
		if aw.window != nil {
			aw.window.Show()
		}
	})
}

// Close closes the window without running the dismiss callback, for
// when the alert was dismissed through another path.
func (aw *AlertWindow) Close() {
	aw.onDismiss = nil
	fyne.Do(func() {
		if aw.window != nil {
			aw.window.Close()
		}
	})
}

func (aw *AlertWindow) registerCmdQPrevention() {
	go func() {
		// Register Cmd+Q (Cmd is ModCmd on macOS)
		hk := hotkey.New([]hotkey.Modifier{hotkey.ModCmd}, hotkey.KeyQ)
		if err := hk.Register(); err != nil {
			log.Printf("Failed to register Cmd+Q hotkey prevention: %v", err)
			return
		}
		aw.cmdQHotkey = hk

		// This loop consumes Cmd+Q events and prevents default quit behavior
		for range hk.Keydown() {
			log.Println("Cmd+Q blocked - hold the Dismiss button to stop the alert")
		}
	}()
}

func (aw *AlertWindow) setupFocusMonitoring() {
	// Monitor if window loses focus and unregister hotkey
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()

		wasFocused := true
		for {
			select {
			case <-aw.stopMonitoring:
				return
			case <-ticker.C:
				if aw.window == nil {
					return
				}

				isFocused := platform.IsAppActive()

				if wasFocused && !isFocused {
					// Window lost focus - unregister hotkey
					if aw.cmdQHotkey != nil {
						aw.cmdQHotkey.Unregister()
						aw.cmdQHotkey = nil
					}
				} else if !wasFocused && isFocused {
					// Window gained focus - register hotkey
					if aw.cmdQHotkey == nil {
						aw.registerCmdQPrevention()
					}
				}

				// Keep the alert in front until it is dismissed
				if !isFocused {
					platform.ActivateApp()
					fyne.Do(func() {
						if aw.window != nil {
							aw.window.Show()
						}
					})
				}

				wasFocused = isFocused
			}
		}
	}()
}

// fullscreenIndicator adapts AlertWindow to the alert controller's
// visual channel.
type fullscreenIndicator struct {
	mm      *MedMinder
	current *AlertWindow
}

func (fi *fullscreenIndicator) Show(title, message string, onStop func()) {
	if fi.current != nil {
		fi.current.Close()
	}
	fi.current = NewAlertWindow(fi.mm.app, title, message, fi.mm.config.HoldTimeSeconds, onStop)
	fi.current.Show()
}

func (fi *fullscreenIndicator) Hide() {
	if fi.current != nil {
		fi.current.Close()
		fi.current = nil
	}
}
