package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	orchestration "github.com/koscakluka/ema-tutor/core"
	"github.com/koscakluka/ema-tutor/core/audio/miniaudio"
	"github.com/koscakluka/ema-tutor/core/audio/portaudio"
	geminillm "github.com/koscakluka/ema-tutor/core/llms/gemini"
	openaillm "github.com/koscakluka/ema-tutor/core/llms/openai"
	deepgramstt "github.com/koscakluka/ema-tutor/core/speechtotext/deepgram"
	deepgramtts "github.com/koscakluka/ema-tutor/core/texttospeech/deepgram"
	geminitts "github.com/koscakluka/ema-tutor/core/texttospeech/gemini"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"github.com/koscakluka/ema-tutor/internal/ui"
)

const portaudioBufferSize = 1024

// newSession wires the configured providers and devices into a tutor. The
// returned cleanup releases the devices after the tutor is closed.
func newSession(cfg Config, bridge *ui.Bridge) (*orchestration.Tutor, func(), error) {
	level, err := tutoring.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	mode, err := tutoring.ParseMode(cfg.Mode)
	if err != nil {
		return nil, nil, err
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	opts := []orchestration.TutorOption{
		orchestration.WithLevel(level),
		orchestration.WithMode(mode),
		orchestration.WithEventHandler(bridge.HandleEvent),
		orchestration.WithAnimator(bridge),
	}

	var gemini *geminillm.Client
	if cfg.GeminiAPIKey != "" {
		gemini = geminillm.NewClient(cfg.GeminiAPIKey)
	}
	var openai *openaillm.Client
	if cfg.OpenAIAPIKey != "" {
		openai = openaillm.NewClient(cfg.OpenAIAPIKey)
	}

	switch cfg.ChatProvider {
	case providerOpenAI:
		opts = append(opts,
			orchestration.WithChatLLM(openai),
			orchestration.WithExerciseGenerator(openai),
			orchestration.WithExerciseGrader(openai),
		)
	default:
		opts = append(opts,
			orchestration.WithChatLLM(gemini),
			orchestration.WithExerciseGenerator(gemini),
			orchestration.WithExerciseGrader(gemini),
		)
	}

	var device *miniaudio.Client
	if !cfg.NoAudio {
		device, err = miniaudio.NewClient()
		if err != nil {
			log.Warn("audio device unavailable, continuing without speech", "err", err)
		} else {
			cleanups = append(cleanups, device.Close)
		}
	}

	if device != nil && cfg.speechAPIKey() != "" {
		synthesizer, err := newSynthesizer(cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		opts = append(opts,
			orchestration.WithAudioOutput(device),
			orchestration.WithSpeechSynthesizer(synthesizer),
		)
	} else if device != nil {
		log.Warn("no API key for the speech provider, continuing without speech", "provider", cfg.TTSProvider)
	}

	if cfg.DeepgramAPIKey != "" {
		input, err := newAudioInput(cfg, device)
		if err != nil {
			log.Warn("voice input unavailable", "backend", cfg.CaptureBackend, "err", err)
		} else {
			if capture, ok := input.(*portaudio.Client); ok {
				cleanups = append(cleanups, capture.Close)
			}
			transcriber, err := deepgramstt.NewTranscriptionClient(cfg.DeepgramAPIKey, deepgramstt.WithLanguage("es"))
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to create transcription client: %w", err)
			}
			opts = append(opts, orchestration.WithVoiceInput(input, transcriber))
		}
	}

	return orchestration.NewTutor(opts...), cleanup, nil
}

func newSynthesizer(cfg Config) (orchestration.SpeechSynthesizer, error) {
	if cfg.TTSProvider == providerDeepgram {
		voice := deepgramtts.VoiceNestor
		if cfg.Voice != "" {
			parsed, ok := deepgramtts.ParseVoice(cfg.Voice)
			if !ok {
				return nil, fmt.Errorf("unknown deepgram voice %q", cfg.Voice)
			}
			voice = parsed
		}
		client, err := deepgramtts.NewTextToSpeechClient(cfg.DeepgramAPIKey, voice)
		if err != nil {
			return nil, fmt.Errorf("failed to create speech client: %w", err)
		}
		return client, nil
	}

	var opts []geminitts.ClientOption
	if cfg.Voice != "" {
		opts = append(opts, geminitts.WithVoice(cfg.Voice))
	}
	return geminitts.NewTextToSpeechClient(cfg.GeminiAPIKey, opts...), nil
}

func newAudioInput(cfg Config, device *miniaudio.Client) (orchestration.AudioInput, error) {
	if cfg.CaptureBackend == backendPortaudio {
		client, err := portaudio.NewClient(portaudioBufferSize)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	if device == nil {
		return nil, errors.New("miniaudio device is not open")
	}
	return device, nil
}
