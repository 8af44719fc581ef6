package tts

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Model is the Gemini Live model used for native audio synthesis.
const Model = "gemini-2.5-flash-native-audio-preview-12-2025"

// DefaultMaxChars caps how much text a single request may carry.
const DefaultMaxChars = 1000

// Modes maps a reading mode to its system-instruction fragment.
var Modes = map[string]string{
	"summary": "Summarize briefly in 1-2 sentences, keep only the main point",
	"full":    "Read the text as provided, naturally",
}

// Styles maps a built-in delivery style to its instruction fragment.
// Custom styles from the config file take over when the configured style
// is not one of these.
var Styles = map[string]string{
	"asmr":      "Speak softly, gently, with calm pauses, like ASMR",
	"neutral":   "Speak naturally and clearly",
	"energetic": "Speak with energy and enthusiasm",
}

// Languages maps a language name to its instruction fragment.
var Languages = map[string]string{
	"russian":  "Speak in Russian",
	"english":  "Speak in English",
	"german":   "Speak in German",
	"spanish":  "Speak in Spanish",
	"french":   "Speak in French",
	"chinese":  "Speak in Chinese",
	"japanese": "Speak in Japanese",
}

// Voices are the prebuilt Gemini voices known to work with the native
// audio model. The voice setting is passed through to the API either way,
// so this list is advisory, for CLI display.
var Voices = []string{"Aoede", "Kore", "Puck", "Charon", "Fenrir", "Leda", "Orus", "Zephyr"}

// Config is the daemon's runtime configuration. It is re-read from disk
// on every request, so edits to the config file apply to the next spoken
// message without a restart.
type Config struct {
	// Mode selects summarization vs. verbatim reading.
	Mode string `json:"mode" yaml:"mode"`

	// Voice is the prebuilt Gemini voice name.
	Voice string `json:"voice" yaml:"voice"`

	// Style is a key into Styles or CustomStyles.
	Style string `json:"style" yaml:"style"`

	// Language selects the spoken language.
	Language string `json:"language" yaml:"language"`

	// MaxChars truncates incoming text to this many runes.
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// CustomStyles holds user-defined style fragments keyed by name.
	CustomStyles map[string]string `json:"custom_styles" yaml:"custom_styles"`
}

// DefaultConfig returns the built-in defaults used when the config file
// is absent or unreadable.
func DefaultConfig() Config {
	return Config{
		Mode:         "summary",
		Voice:        "Aoede",
		Style:        "asmr",
		Language:     "russian",
		MaxChars:     DefaultMaxChars,
		CustomStyles: map[string]string{},
	}
}

// LoadConfig reads the config file at path, merging it over the defaults:
// keys absent from the file keep their default values. A missing file is
// not an error. A malformed or unreadable file returns the defaults along
// with the error, so the caller can log and keep going.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return DefaultConfig(), fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config: %w", err)
	}
	if cfg.CustomStyles == nil {
		cfg.CustomStyles = map[string]string{}
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Instruction builds the system instruction sent on session connect.
// Unknown mode, style or language names simply contribute nothing, so a
// typo degrades to the model's own judgement rather than failing.
func (c Config) Instruction() string {
	var parts []string

	if s, ok := Modes[c.Mode]; ok {
		parts = append(parts, s)
	}
	if s, ok := Styles[c.Style]; ok {
		parts = append(parts, s)
	} else if s, ok := c.CustomStyles[c.Style]; ok {
		parts = append(parts, s)
	}
	if s, ok := Languages[c.Language]; ok {
		parts = append(parts, s)
	}

	return strings.Join(parts, ". ") + "."
}

// StyleBody returns the instruction fragment the configured style resolves
// to, or "" if the style names neither a preset nor a custom style.
func (c Config) StyleBody() string {
	if s, ok := Styles[c.Style]; ok {
		return s
	}
	return c.CustomStyles[c.Style]
}

// SessionEquals reports whether two configs would produce the same Live
// session. Voice, style, mode and language all bake into the connection;
// for a custom style the body matters too, since editing its text must
// trigger a reconnect even when the style name is unchanged.
func (c Config) SessionEquals(o Config) bool {
	if c.Voice != o.Voice || c.Style != o.Style || c.Mode != o.Mode || c.Language != o.Language {
		return false
	}
	if _, preset := Styles[c.Style]; !preset {
		if c.CustomStyles[c.Style] != o.CustomStyles[o.Style] {
			return false
		}
	}
	return true
}
