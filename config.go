package main

import (
	"fyne.io/fyne/v2"

	"github.com/wrenlake/med-minder/pkg/parse"
)

type Config struct {
	AutoStart       bool   `json:"auto_start"`
	TTSEnabled      bool   `json:"tts_enabled"`
	SpeechLanguage  string `json:"speech_language"`
	AlarmSoundPath  string `json:"alarm_sound_path"`
	HoldTimeSeconds int    `json:"hold_time_seconds"`
	AIAPIKey        string `json:"ai_api_key"`
	AIBaseURL       string `json:"ai_base_url"`
	AIModel         string `json:"ai_model"`
}

func loadConfig(app fyne.App) *Config {
	prefs := app.Preferences()

	return &Config{
		AutoStart:       prefs.BoolWithFallback("auto_start", false),
		TTSEnabled:      prefs.BoolWithFallback("tts_enabled", true),
		SpeechLanguage:  prefs.StringWithFallback("speech_language", "en"),
		AlarmSoundPath:  prefs.String("alarm_sound_path"),
		HoldTimeSeconds: prefs.IntWithFallback("hold_time_seconds", 3),
		AIAPIKey:        prefs.String("ai_api_key"),
		AIBaseURL:       prefs.StringWithFallback("ai_base_url", parse.DefaultBaseURL),
		AIModel:         prefs.StringWithFallback("ai_model", parse.DefaultModel),
	}
}

func saveConfig(app fyne.App, config *Config) {
	prefs := app.Preferences()

	prefs.SetBool("auto_start", config.AutoStart)
	prefs.SetBool("tts_enabled", config.TTSEnabled)
	prefs.SetString("speech_language", config.SpeechLanguage)
	prefs.SetString("alarm_sound_path", config.AlarmSoundPath)
	prefs.SetInt("hold_time_seconds", config.HoldTimeSeconds)
	prefs.SetString("ai_api_key", config.AIAPIKey)
	prefs.SetString("ai_base_url", config.AIBaseURL)
	prefs.SetString("ai_model", config.AIModel)
}

// AIConfigured reports whether natural language parsing can be used.
func (c *Config) AIConfigured() bool {
	return c.AIAPIKey != ""
}
