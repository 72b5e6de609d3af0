// Package speech speaks alert messages aloud using text-to-speech.
package speech

import (
	"os"
	"path/filepath"

	htgotts "github.com/hegedustibor/htgo-tts"
	"github.com/hegedustibor/htgo-tts/handlers"
)

// Speaker converts alert text to audio. Say blocks until the utterance
// has finished playing, which lets the caller pace repeated speech.
type Speaker struct {
	enabled bool
	tts     *htgotts.Speech
}

// NewSpeaker creates a Speaker for the given language code ("en", "de",
// ...). Synthesized audio is cached under the user cache directory.
func NewSpeaker(enabled bool, language string) *Speaker {
	if language == "" {
		language = "en"
	}

	folder := filepath.Join(os.TempDir(), "medminder-tts")
	if cache, err := os.UserCacheDir(); err == nil {
		folder = filepath.Join(cache, "medminder", "tts")
	}

	return &Speaker{
		enabled: enabled,
		tts: &htgotts.Speech{
			Folder:   folder,
			Language: language,
			Handler:  &handlers.Native{},
		},
	}
}

// Enabled reports whether speech output is turned on in settings.
func (s *Speaker) Enabled() bool {
	return s.enabled
}

// Say synthesizes and plays text, blocking until playback completes.
func (s *Speaker) Say(text string) error {
	return s.tts.Speak(text)
}
