package llms

import (
	"context"
	"errors"
	"testing"
)

type contentChunk string

func (contentChunk) FinishReason() *string { return nil }
func (c contentChunk) Content() string     { return string(c) }

type usageChunk struct{}

func (usageChunk) FinishReason() *string { return nil }
func (usageChunk) Usage() Usage          { return Usage{TotalTokens: 3} }

type sliceStream struct {
	chunks []StreamChunk
	err    error
}

func (s sliceStream) Chunks(context.Context) func(func(StreamChunk, error) bool) {
	return func(yield func(StreamChunk, error) bool) {
		for _, chunk := range s.chunks {
			if !yield(chunk, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

func TestCollectConcatenatesContent(t *testing.T) {
	stream := sliceStream{chunks: []StreamChunk{contentChunk("¡Hola"), usageChunk{}, contentChunk(", parcero!")}}

	content, err := Collect(context.Background(), stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "¡Hola, parcero!" {
		t.Fatalf("expected %q, got %q", "¡Hola, parcero!", content)
	}
}

func TestCollectStopsOnError(t *testing.T) {
	streamErr := errors.New("boom")
	stream := sliceStream{chunks: []StreamChunk{contentChunk("Hola")}, err: streamErr}

	content, err := Collect(context.Background(), stream)
	if !errors.Is(err, streamErr) {
		t.Fatalf("expected stream error, got %v", err)
	}
	if content != "Hola" {
		t.Fatalf("expected partial content, got %q", content)
	}
}

func TestOptionsApplyToStreaming(t *testing.T) {
	options := StreamingPromptOptions{}
	for _, opt := range []StreamingPromptOption{
		WithInstructions("first"),
		WithInstructions("second"),
		WithMessages(Message{Role: MessageRoleUser, Content: "Hola"}),
		WithMessages(Message{Role: MessageRoleModel, Content: "¡Qué más!"}),
	} {
		opt.ApplyToStreaming(&options)
	}

	if options.Instructions != "second" {
		t.Fatalf("expected last instruction to win, got %q", options.Instructions)
	}
	if len(options.Messages) != 2 || options.Messages[1].Role != MessageRoleModel {
		t.Fatalf("expected messages to accumulate, got %+v", options.Messages)
	}
}
