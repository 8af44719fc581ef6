package tts

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Mode != "summary" || cfg.Voice != "Aoede" || cfg.Style != "asmr" ||
		cfg.Language != "russian" || cfg.MaxChars != 1000 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.CustomStyles == nil {
		t.Error("CustomStyles not initialized")
	}
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tts_config.json")
	if err := os.WriteFile(path, []byte(`{"voice": "Puck", "mode": "full"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Voice != "Puck" || cfg.Mode != "full" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Style != "asmr" || cfg.Language != "russian" || cfg.MaxChars != 1000 {
		t.Errorf("defaults not kept for absent keys: %+v", cfg)
	}
}

func TestLoadConfigMalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tts_config.json")
	if err := os.WriteFile(path, []byte(`{broken`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("LoadConfig = nil error for malformed file")
	}
	if cfg.Voice != "Aoede" || cfg.MaxChars != 1000 {
		t.Errorf("malformed config did not fall back to defaults: %+v", cfg)
	}
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tts_config.json")

	want := DefaultConfig()
	want.Voice = "Kore"
	want.CustomStyles["pirate"] = "Speak like a pirate"
	if err := want.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if got.Voice != "Kore" || got.CustomStyles["pirate"] != "Speak like a pirate" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestInstruction(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults",
			cfg:  DefaultConfig(),
			want: "Summarize briefly in 1-2 sentences, keep only the main point. " +
				"Speak softly, gently, with calm pauses, like ASMR. Speak in Russian.",
		},
		{
			name: "full english neutral",
			cfg:  Config{Mode: "full", Style: "neutral", Language: "english"},
			want: "Read the text as provided, naturally. Speak naturally and clearly. Speak in English.",
		},
		{
			name: "custom style",
			cfg: Config{
				Mode:         "full",
				Style:        "whisper",
				Language:     "german",
				CustomStyles: map[string]string{"whisper": "Whisper everything"},
			},
			want: "Read the text as provided, naturally. Whisper everything. Speak in German.",
		},
		{
			name: "unknown keys contribute nothing",
			cfg:  Config{Mode: "brief", Style: "metal", Language: "latin"},
			want: ".",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Instruction(); got != tt.want {
				t.Errorf("Instruction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionEquals(t *testing.T) {
	base := DefaultConfig()

	same := DefaultConfig()
	same.MaxChars = 50 // does not affect the session
	if !base.SessionEquals(same) {
		t.Error("max_chars change should not require a reconnect")
	}

	voice := DefaultConfig()
	voice.Voice = "Puck"
	if base.SessionEquals(voice) {
		t.Error("voice change must require a reconnect")
	}

	lang := DefaultConfig()
	lang.Language = "english"
	if base.SessionEquals(lang) {
		t.Error("language change must require a reconnect")
	}

	a := DefaultConfig()
	a.Style = "whisper"
	a.CustomStyles = map[string]string{"whisper": "Whisper everything"}
	b := DefaultConfig()
	b.Style = "whisper"
	b.CustomStyles = map[string]string{"whisper": "Whisper very quietly"}
	if a.SessionEquals(b) {
		t.Error("custom style body change must require a reconnect")
	}
	b.CustomStyles["whisper"] = "Whisper everything"
	if !a.SessionEquals(b) {
		t.Error("identical custom styles should not require a reconnect")
	}
}

func TestStyleBody(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.StyleBody(); got != Styles["asmr"] {
		t.Errorf("StyleBody = %q", got)
	}
	cfg.Style = "whisper"
	if got := cfg.StyleBody(); got != "" {
		t.Errorf("StyleBody for unknown style = %q, want empty", got)
	}
	cfg.CustomStyles["whisper"] = "Whisper everything"
	if got := cfg.StyleBody(); got != "Whisper everything" {
		t.Errorf("StyleBody = %q", got)
	}
}
