package alert

import (
	"errors"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *stubNotifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, title+": "+message)
	return n.err
}

func (n *stubNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type stubAudio struct {
	mu     sync.Mutex
	starts int
	stops  int
}

func (a *stubAudio) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts++
}

func (a *stubAudio) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops++
}

func (a *stubAudio) counts() (int, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts, a.stops
}

type stubSpeaker struct {
	mu      sync.Mutex
	enabled bool
	spoken  int
	err     error
}

func (s *stubSpeaker) Enabled() bool { return s.enabled }

func (s *stubSpeaker) Say(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken++
	return s.err
}

func (s *stubSpeaker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spoken
}

type stubIndicator struct {
	mu      sync.Mutex
	shown   int
	hidden  int
	onStop  func()
	message string
}

func (i *stubIndicator) Show(title, message string, onStop func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.shown++
	i.message = message
	i.onStop = onStop
}

func (i *stubIndicator) Hide() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.hidden++
}

func newTestController(t *testing.T, speakerEnabled bool) (*Controller, *stubNotifier, *stubAudio, *stubSpeaker, *stubIndicator) {
	t.Helper()
	notifier := &stubNotifier{}
	audio := &stubAudio{}
	speaker := &stubSpeaker{enabled: speakerEnabled}
	indicator := &stubIndicator{}
	prefs := test.NewApp().Preferences()
	c := NewController(notifier, audio, speaker, indicator, prefs)
	return c, notifier, audio, speaker, indicator
}

func TestRaiseStartsAllChannels(t *testing.T) {
	c, notifier, audio, speaker, indicator := newTestController(t, true)
	c.RequestPermission(true)

	c.Raise("Medication Reminder", "Reminder: Metformin")

	assert.True(t, c.Active())
	assert.Equal(t, 1, notifier.count())
	starts, _ := audio.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, indicator.shown)
	assert.Equal(t, "Reminder: Metformin", indicator.message)

	// Speech loop keeps re-speaking until dismissed.
	require.Eventually(t, func() bool { return speaker.count() >= 2 }, 5*time.Second, 50*time.Millisecond)

	c.Dismiss()
}

func TestNotificationSkippedWithoutPermission(t *testing.T) {
	c, notifier, _, _, _ := newTestController(t, false)

	c.Raise("Medication Reminder", "Reminder: Metformin")
	defer c.Dismiss()

	assert.Equal(t, PermissionDefault, c.Permission())
	assert.Equal(t, 0, notifier.count())
}

func TestNotifierFailureDoesNotSuppressOtherChannels(t *testing.T) {
	c, notifier, audio, _, indicator := newTestController(t, false)
	c.RequestPermission(true)
	notifier.err = errors.New("notification daemon unavailable")

	c.Raise("Appointment Reminder", "Reminder: Dentist")
	defer c.Dismiss()

	starts, _ := audio.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, indicator.shown)
}

func TestDismissStopsEverything(t *testing.T) {
	c, _, audio, speaker, indicator := newTestController(t, true)

	c.Raise("Medication Reminder", "Reminder: Metformin")
	require.Eventually(t, func() bool { return speaker.count() >= 1 }, 5*time.Second, 50*time.Millisecond)

	c.Dismiss()

	assert.False(t, c.Active())
	_, stops := audio.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, 1, indicator.hidden)

	// The speech loop terminates within one utterance cycle.
	time.Sleep(speechPause + 200*time.Millisecond)
	settled := speaker.count()
	time.Sleep(speechPause + 200*time.Millisecond)
	assert.Equal(t, settled, speaker.count())
}

func TestDismissIsIdempotent(t *testing.T) {
	c, _, audio, _, indicator := newTestController(t, false)

	c.Raise("Medication Reminder", "Reminder: Metformin")
	c.Dismiss()
	c.Dismiss()

	_, stops := audio.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, 1, indicator.hidden)
	assert.False(t, c.Active())

	// Dismiss on a never-raised controller is also a no-op.
	idle := NewController(nil, audio, nil, indicator, nil)
	idle.Dismiss()
	_, stops = audio.counts()
	assert.Equal(t, 1, stops)
}

func TestRaiseWhileActiveRestartsSession(t *testing.T) {
	c, _, audio, speaker, indicator := newTestController(t, true)

	c.Raise("Medication Reminder", "first")
	c.Raise("Medication Reminder", "second")
	defer c.Dismiss()

	assert.True(t, c.Active())
	starts, _ := audio.counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, indicator.shown)
	assert.Equal(t, "second", indicator.message)
	require.Eventually(t, func() bool { return speaker.count() >= 1 }, 5*time.Second, 50*time.Millisecond)
}

func TestSpeechErrorEndsLoopOnly(t *testing.T) {
	c, _, audio, speaker, _ := newTestController(t, true)
	speaker.err = errors.New("no tts backend")

	c.Raise("Medication Reminder", "Reminder: Metformin")
	defer c.Dismiss()

	require.Eventually(t, func() bool { return speaker.count() == 1 }, 5*time.Second, 50*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, speaker.count())

	// Audio keeps looping regardless.
	starts, stops := audio.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 0, stops)
}

func TestPermissionPersistsAcrossControllers(t *testing.T) {
	prefs := test.NewApp().Preferences()

	c1 := NewController(nil, nil, nil, nil, prefs)
	assert.Equal(t, PermissionDefault, c1.Permission())
	assert.Equal(t, PermissionGranted, c1.RequestPermission(true))

	c2 := NewController(nil, nil, nil, nil, prefs)
	assert.Equal(t, PermissionGranted, c2.Permission())

	assert.Equal(t, PermissionDenied, c2.RequestPermission(false))
	assert.Equal(t, PermissionDenied, c1.Permission())
}
