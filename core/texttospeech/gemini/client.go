// Package gemini synthesizes speech with the Gemini TTS model.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-tutor/internal/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice = "Zephyr"
)

type TextToSpeechClient struct {
	apiKey  string
	baseURL string
	model   string
	voice   string

	httpClient *http.Client
}

type ClientOption func(*TextToSpeechClient)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *TextToSpeechClient) { c.baseURL = baseURL }
}

func WithModel(model string) ClientOption {
	return func(c *TextToSpeechClient) { c.model = model }
}

func WithVoice(voice string) ClientOption {
	return func(c *TextToSpeechClient) {
		if voice != "" {
			c.voice = voice
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *TextToSpeechClient) { c.httpClient = client }
}

func NewTextToSpeechClient(apiKey string, opts ...ClientOption) *TextToSpeechClient {
	c := &TextToSpeechClient{
		apiKey:  apiKey,
		baseURL: genai.DefaultBaseURL,
		model:   DefaultModel,
		voice:   DefaultVoice,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = genai.NewHTTPClient()
	}
	return c
}

// Synthesize returns 24 kHz mono linear16 PCM for text, or nil when the model
// answered without audio.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.String("request.voice", c.voice),
		attribute.Int("request.text_length", len(text)),
	)

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	response, err := genai.Generate(ctx, c.httpClient, c.baseURL, c.apiKey, c.model, genai.Request{
		Contents: []genai.Content{{Parts: []genai.Part{{Text: text}}}},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &genai.SpeechConfig{
				VoiceConfig: genai.VoiceConfig{
					PrebuiltVoiceConfig: genai.PrebuiltVoiceConfig{VoiceName: c.voice},
				},
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("failed to synthesize speech: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	inline := response.InlineData()
	if inline == nil || inline.Data == "" {
		span.AddEvent("no audio data received")
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(inline.Data)
	if err != nil {
		err = fmt.Errorf("failed to decode audio data: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("response.audio_bytes", len(data)))
	return data, nil
}
