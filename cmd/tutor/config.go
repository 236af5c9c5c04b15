package main

import (
	"errors"
	"fmt"

	"github.com/koscakluka/ema-tutor/core/tutoring"
)

const (
	providerGemini   = "gemini"
	providerOpenAI   = "openai"
	providerDeepgram = "deepgram"

	backendMiniaudio = "miniaudio"
	backendPortaudio = "portaudio"
)

// Config is read from the environment (and .env) and then overridden by
// flags.
type Config struct {
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`

	Level          string `env:"TUTOR_LEVEL" envDefault:"B2"`
	Mode           string `env:"TUTOR_MODE" envDefault:"chat"`
	ChatProvider   string `env:"TUTOR_CHAT_PROVIDER" envDefault:"gemini"`
	TTSProvider    string `env:"TUTOR_TTS_PROVIDER" envDefault:"gemini"`
	Voice          string `env:"TUTOR_VOICE"`
	CaptureBackend string `env:"TUTOR_CAPTURE_BACKEND" envDefault:"miniaudio"`
	LogFile        string `env:"TUTOR_LOG_FILE" envDefault:"tutor.log"`
	NoAudio        bool   `env:"TUTOR_NO_AUDIO"`
}

func (c Config) Validate() error {
	var errs []error
	if _, err := tutoring.ParseLevel(c.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := tutoring.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}

	switch c.ChatProvider {
	case providerGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini chat provider"))
		}
	case providerOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai chat provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown chat provider %q", c.ChatProvider))
	}

	switch c.TTSProvider {
	case providerGemini, providerDeepgram:
	default:
		errs = append(errs, fmt.Errorf("unknown speech provider %q", c.TTSProvider))
	}

	switch c.CaptureBackend {
	case backendMiniaudio, backendPortaudio:
	default:
		errs = append(errs, fmt.Errorf("unknown capture backend %q", c.CaptureBackend))
	}

	return errors.Join(errs...)
}

// speechAPIKey is the key for the configured speech provider, empty when
// speech cannot be synthesized.
func (c Config) speechAPIKey() string {
	if c.TTSProvider == providerDeepgram {
		return c.DeepgramAPIKey
	}
	return c.GeminiAPIKey
}
