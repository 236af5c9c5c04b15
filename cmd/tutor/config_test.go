package main

import (
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

func parseConfig(t *testing.T, environment map[string]string) Config {
	t.Helper()

	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environment})
	if err != nil {
		t.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := parseConfig(t, map[string]string{"GEMINI_API_KEY": "key"})

	if cfg.Level != "B2" || cfg.Mode != "chat" {
		t.Errorf("level = %q, mode = %q", cfg.Level, cfg.Mode)
	}
	if cfg.ChatProvider != providerGemini || cfg.TTSProvider != providerGemini {
		t.Errorf("chat = %q, tts = %q", cfg.ChatProvider, cfg.TTSProvider)
	}
	if cfg.CaptureBackend != backendMiniaudio || cfg.LogFile != "tutor.log" || cfg.NoAudio {
		t.Errorf("capture = %q, log = %q, noAudio = %v", cfg.CaptureBackend, cfg.LogFile, cfg.NoAudio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults with a key should be valid, got %v", err)
	}
}

func TestConfigValidateReportsEveryProblem(t *testing.T) {
	cfg := parseConfig(t, map[string]string{
		"TUTOR_LEVEL":           "A1",
		"TUTOR_CHAT_PROVIDER":   "openai",
		"TUTOR_CAPTURE_BACKEND": "alsa",
	})

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	for _, want := range []string{"A1", "OPENAI_API_KEY", "alsa"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q, got %v", want, err)
		}
	}
}

func TestSpeechAPIKeyFollowsProvider(t *testing.T) {
	cfg := parseConfig(t, map[string]string{
		"GEMINI_API_KEY":     "gemini",
		"DEEPGRAM_API_KEY":   "deepgram",
		"TUTOR_TTS_PROVIDER": "deepgram",
	})
	if got := cfg.speechAPIKey(); got != "deepgram" {
		t.Errorf("speechAPIKey() = %q", got)
	}

	cfg.TTSProvider = providerGemini
	if got := cfg.speechAPIKey(); got != "gemini" {
		t.Errorf("speechAPIKey() = %q", got)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringVarP(&level, "level", "l", "", "")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "")
	cmd.Flags().BoolVar(&noAudio, "no-audio", false, "")
	if err := cmd.Flags().Parse([]string{"--level", "C1", "--no-audio"}); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}

	cfg := parseConfig(t, map[string]string{"TUTOR_LEVEL": "B1", "TUTOR_MODE": "practice"})
	applyFlags(cmd, &cfg)

	if cfg.Level != "C1" {
		t.Errorf("level = %q, want the flag value", cfg.Level)
	}
	if cfg.Mode != "practice" {
		t.Errorf("mode = %q, want the environment value", cfg.Mode)
	}
	if !cfg.NoAudio {
		t.Error("no-audio flag should be applied")
	}
}
