// Package deepgram synthesizes speech over Deepgram's streaming speak
// websocket.
package deepgram

import (
	"fmt"
	"slices"

	"github.com/koscakluka/ema-tutor/core/texttospeech"
)

const defaultURL = "wss://api.deepgram.com/v1/speak"

type TextToSpeechClient struct {
	apiKey  string
	url     string
	voice   deepgramVoice
	options texttospeech.TextToSpeechOptions
}

type ClientOption func(*TextToSpeechClient)

// WithURL overrides the speak endpoint.
func WithURL(url string) ClientOption {
	return func(c *TextToSpeechClient) { c.url = url }
}

func WithOptions(opts ...texttospeech.TextToSpeechOption) ClientOption {
	return func(c *TextToSpeechClient) {
		for _, opt := range opts {
			opt(&c.options)
		}
	}
}

func NewTextToSpeechClient(apiKey string, voice deepgramVoice, opts ...ClientOption) (*TextToSpeechClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not set")
	}

	client := &TextToSpeechClient{
		apiKey:  apiKey,
		url:     defaultURL,
		voice:   defaultVoice,
		options: texttospeech.NewOptions(),
	}
	if voice != "" {
		if !slices.Contains(GetAvailableVoices(), voice) {
			return nil, fmt.Errorf("invalid voice %q", voice)
		}
		client.voice = voice
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *TextToSpeechClient) Voice() string {
	return string(c.voice)
}
