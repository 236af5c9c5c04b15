package llms

import (
	"context"
	"strings"
)

type Stream interface {
	Chunks(context.Context) func(func(StreamChunk, error) bool)
}

type StreamChunk interface {
	FinishReason() *string
}

type StreamContentChunk interface {
	StreamChunk
	Content() string
}

type StreamUsageChunk interface {
	StreamChunk
	Usage() Usage
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Collect drains the stream and returns the concatenated content. The first
// error ends collection.
func Collect(ctx context.Context, stream Stream) (string, error) {
	var content strings.Builder
	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			return content.String(), err
		}
		if c, ok := chunk.(StreamContentChunk); ok {
			content.WriteString(c.Content())
		}
	}
	return content.String(), nil
}
