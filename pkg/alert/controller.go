// Package alert drives the multi-channel reminder alarm: a one-shot
// system notification, a looping audio cue, a looping spoken announcement
// and a persistent on-screen indicator. The alarm repeats until the user
// explicitly stops it; channels fail independently so a missing capability
// degrades the alert instead of suppressing it.
package alert

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
)

// Permission mirrors the notification permission states the reminder UI
// exposes. It gates only the system-notification channel.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

const permissionKey = "notification_permission"

// speechPause is the gap between spoken announcements while alerting.
const speechPause = time.Second

// Notifier delivers a one-shot system notification.
type Notifier interface {
	Notify(title, message string) error
}

// AudioLoop is a restartable looping alarm sound.
type AudioLoop interface {
	Start()
	Stop()
}

// Speaker synthesizes a single utterance, returning when it completes.
type Speaker interface {
	Enabled() bool
	Say(text string) error
}

// Indicator is the persistent on-screen alert surface. Show must present
// a stop affordance wired to the given callback; Hide removes it.
type Indicator interface {
	Show(title, message string, onStop func())
	Hide()
}

// Controller owns the single shared alert session. Raising a new alert
// while one is active restarts the session (last writer wins) rather
// than layering concurrent alarms.
type Controller struct {
	mu      sync.Mutex
	active  bool
	session uint64

	notifier  Notifier
	audio     AudioLoop
	speaker   Speaker
	indicator Indicator
	prefs     fyne.Preferences
}

// NewController wires the alert channels together. Any channel may be nil
// and is then simply skipped.
func NewController(notifier Notifier, audio AudioLoop, speaker Speaker, indicator Indicator, prefs fyne.Preferences) *Controller {
	return &Controller{
		notifier:  notifier,
		audio:     audio,
		speaker:   speaker,
		indicator: indicator,
		prefs:     prefs,
	}
}

// Raise starts (or restarts) the alert session for the given title and
// message. It never returns an error: each channel is attempted
// independently and failures are logged, not propagated.
func (c *Controller) Raise(title, message string) {
	c.mu.Lock()
	c.active = true
	c.session++
	session := c.session
	c.mu.Unlock()

	if c.notifier != nil && c.Permission() == PermissionGranted {
		if err := c.notifier.Notify(title, message); err != nil {
			log.Printf("System notification failed: %v", err)
		}
	}

	if c.audio != nil {
		c.audio.Start()
	}

	if c.speaker != nil && c.speaker.Enabled() {
		go c.speechLoop(session, message)
	}

	if c.indicator != nil {
		c.indicator.Show(title, message, c.Dismiss)
	}
}

// speechLoop speaks the message, pauses, and repeats while its session is
// still the active one. The session check before each utterance is the
// sentinel that ends the loop after Dismiss.
func (c *Controller) speechLoop(session uint64, message string) {
	for c.isCurrent(session) {
		if err := c.speaker.Say(message); err != nil {
			log.Printf("Speech synthesis failed: %v", err)
			return
		}
		time.Sleep(speechPause)
	}
}

func (c *Controller) isCurrent(session uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active && c.session == session
}

// Active reports whether an alert session is in progress.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Dismiss stops every alert channel. Dismissing an idle controller is a
// no-op, so wiring it to multiple stop affordances is safe. Speech
// cannot be cut mid-word: an utterance already playing finishes, and
// the loop exits before starting the next one.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.session++
	c.mu.Unlock()

	if c.audio != nil {
		c.audio.Stop()
	}
	if c.indicator != nil {
		c.indicator.Hide()
	}
	log.Println("Alert dismissed")
}

// Permission returns the persisted notification permission state.
func (c *Controller) Permission() Permission {
	if c.prefs == nil {
		return PermissionDefault
	}
	switch Permission(c.prefs.StringWithFallback(permissionKey, string(PermissionDefault))) {
	case PermissionGranted:
		return PermissionGranted
	case PermissionDenied:
		return PermissionDenied
	}
	return PermissionDefault
}

// RequestPermission records the user's answer to the enable-notifications
// control and returns the resulting state.
func (c *Controller) RequestPermission(granted bool) Permission {
	state := PermissionDenied
	if granted {
		state = PermissionGranted
	}
	if c.prefs != nil {
		c.prefs.SetString(permissionKey, string(state))
	}
	return state
}
