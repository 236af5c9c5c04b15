// Package gemini talks to the Gemini REST API for the tutor's chat stream,
// exercise generation and answer grading.
package gemini

import (
	"net/http"

	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/internal/genai"
)

const (
	DefaultChatModel     = "gemini-2.5-flash"
	DefaultExerciseModel = "gemini-2.5-pro"
	DefaultGradingModel  = "gemini-2.5-flash"
)

type Client struct {
	apiKey  string
	baseURL string

	chatModel     string
	exerciseModel string
	gradingModel  string

	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = baseURL }
}

func WithChatModel(model string) ClientOption {
	return func(c *Client) { c.chatModel = model }
}

func WithExerciseModel(model string) ClientOption {
	return func(c *Client) { c.exerciseModel = model }
}

func WithGradingModel(model string) ClientOption {
	return func(c *Client) { c.gradingModel = model }
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:        apiKey,
		baseURL:       genai.DefaultBaseURL,
		chatModel:     DefaultChatModel,
		exerciseModel: DefaultExerciseModel,
		gradingModel:  DefaultGradingModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = genai.NewHTTPClient()
	}
	return c
}

func toContents(messages []llms.Message) []genai.Content {
	contents := make([]genai.Content, 0, len(messages))
	for _, message := range messages {
		role := "user"
		if message.Role == llms.MessageRoleModel {
			role = "model"
		}
		contents = append(contents, genai.TextContent(role, message.Content))
	}
	return contents
}
