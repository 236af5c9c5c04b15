// Package deepgram transcribes Spanish speech over Deepgram's streaming
// listen websocket.
package deepgram

import (
	"fmt"
	"time"
)

const (
	defaultURL      = "wss://api.deepgram.com/v1/listen"
	defaultModel    = "nova-3"
	defaultLanguage = "es"

	keepAliveInterval = 5 * time.Second
)

type TranscriptionClient struct {
	apiKey   string
	url      string
	model    string
	language string
}

type ClientOption func(*TranscriptionClient)

func WithURL(url string) ClientOption {
	return func(c *TranscriptionClient) { c.url = url }
}

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) { c.model = model }
}

func WithLanguage(language string) ClientOption {
	return func(c *TranscriptionClient) { c.language = language }
}

func NewTranscriptionClient(apiKey string, opts ...ClientOption) (*TranscriptionClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not set")
	}
	client := &TranscriptionClient{
		apiKey:   apiKey,
		url:      defaultURL,
		model:    defaultModel,
		language: defaultLanguage,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}
