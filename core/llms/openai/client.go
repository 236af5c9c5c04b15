// Package openai implements the tutor's chat, exercise and grading contracts
// on top of the OpenAI Responses API.
package openai

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultURL   = "https://api.openai.com/v1/responses"
	DefaultModel = "gpt-4.1-mini"
)

type Client struct {
	apiKey string
	model  string
	url    string

	httpClient *http.Client
}

type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(c *Client) { c.model = model }
}

// WithURL overrides the Responses endpoint.
func WithURL(url string) ClientOption {
	return func(c *Client) { c.url = url }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{apiKey: apiKey, model: DefaultModel, url: defaultURL}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return c
}
