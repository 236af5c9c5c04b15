package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/internal/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	chunkPrefix = "data:"

	maxEventSize = 1024 * 1024
)

// PromptWithStream prepares a streamed reply for the history in opts followed
// by prompt, if any. Nothing is sent until the stream's chunks are ranged
// over.
func (c *Client) PromptWithStream(_ context.Context, prompt *string, opts ...llms.StreamingPromptOption) llms.Stream {
	options := llms.StreamingPromptOptions{}
	for _, opt := range opts {
		opt.ApplyToStreaming(&options)
	}

	contents := toContents(options.Messages)
	if prompt != nil {
		contents = append(contents, genai.TextContent("user", *prompt))
	}

	request := genai.Request{Contents: contents}
	if options.Instructions != "" {
		instruction := genai.TextContent("", options.Instructions)
		request.SystemInstruction = &instruction
	}

	return &Stream{client: c, request: request}
}

type Stream struct {
	client  *Client
	request genai.Request
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "stream gemini reply")
		defer span.End()
		span.SetAttributes(
			attribute.String("request.model", s.client.chatModel),
			attribute.Int("request.contents", len(s.request.Contents)),
		)

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		resp, err := genai.Post(ctx, s.client.httpClient, s.client.baseURL, s.client.apiKey, s.client.chatModel, "streamGenerateContent?alt=sse", s.request)
		if err != nil {
			fail(err)
			return
		}
		defer resp.Body.Close()

		chunks := 0
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, chunkPrefix) {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, chunkPrefix))
			if data == "" {
				continue
			}

			var response genai.Response
			if err := json.Unmarshal([]byte(data), &response); err != nil {
				fail(fmt.Errorf("error unmarshalling JSON: %w", err))
				return
			}

			var finishReason *string
			if len(response.Candidates) > 0 {
				finishReason = response.Candidates[0].FinishReason
			}
			if text := response.Text(); text != "" || finishReason != nil {
				chunks++
				if !yield(StreamContentChunk{finishReason: finishReason, content: text}, nil) {
					return
				}
			}
			if response.UsageMetadata != nil && finishReason != nil {
				if !yield(StreamUsageChunk{usage: llms.Usage{
					InputTokens:  response.UsageMetadata.PromptTokenCount,
					OutputTokens: response.UsageMetadata.CandidatesTokenCount,
					TotalTokens:  response.UsageMetadata.TotalTokenCount,
				}}, nil) {
					return
				}
			}
		}

		if err := scanner.Err(); err != nil {
			fail(fmt.Errorf("error reading streamed response: %w", err))
			return
		}
		span.SetAttributes(attribute.Int("response.chunks", chunks))
	}
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}

type StreamUsageChunk struct {
	finishReason *string
	usage        llms.Usage
}

func (s StreamUsageChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamUsageChunk) Usage() llms.Usage {
	return s.usage
}
