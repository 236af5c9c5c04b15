package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"github.com/koscakluka/ema-tutor/internal/genai"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestPromptWithStreamYieldsChunksInOrder(t *testing.T) {
	var request genai.Request
	var path, query string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&request)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"¡Hola! ", "Soy Pablo."} {
			fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\r\n\r\n", text)
		}
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[]},\"finishReason\":\"STOP\"}],\"usageMetadata\":{\"totalTokenCount\":12}}\r\n\r\n")
	})

	stream := client.PromptWithStream(context.Background(), nil,
		llms.WithInstructions("You are Pablo"),
		llms.WithMessages(
			llms.Message{Role: llms.MessageRoleUser, Content: "Hola"},
			llms.Message{Role: llms.MessageRoleModel, Content: "¡Qué más!"},
			llms.Message{Role: llms.MessageRoleUser, Content: "¿Cómo estás?"},
		),
	)

	var content strings.Builder
	var usage *llms.Usage
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		switch c := chunk.(type) {
		case llms.StreamContentChunk:
			content.WriteString(c.Content())
		case llms.StreamUsageChunk:
			u := c.Usage()
			usage = &u
		}
	}

	if content.String() != "¡Hola! Soy Pablo." {
		t.Fatalf("unexpected content %q", content.String())
	}
	if usage == nil || usage.TotalTokens != 12 {
		t.Fatalf("expected usage chunk, got %+v", usage)
	}
	if path != "/models/gemini-2.5-flash:streamGenerateContent" || query != "alt=sse" {
		t.Fatalf("unexpected request target %s?%s", path, query)
	}
	if request.SystemInstruction == nil || request.SystemInstruction.Parts[0].Text != "You are Pablo" {
		t.Fatalf("expected system instruction, got %+v", request.SystemInstruction)
	}
	if len(request.Contents) != 3 || request.Contents[1].Role != "model" || request.Contents[2].Role != "user" {
		t.Fatalf("unexpected contents %+v", request.Contents)
	}
}

func TestPromptWithStreamReportsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := llms.Collect(context.Background(), client.PromptWithStream(context.Background(), nil))
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected HTTP error, got %v", err)
	}
}

func TestPromptWithStreamReportsMalformedEvent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"Hola\"}]}}]}\n\ndata: {not json\n\n")
	})

	content, err := llms.Collect(context.Background(), client.PromptWithStream(context.Background(), nil))
	if err == nil {
		t.Fatalf("expected error for malformed event")
	}
	if content != "Hola" {
		t.Fatalf("expected content before the failure, got %q", content)
	}
}

func TestGenerateExerciseRequestsSchema(t *testing.T) {
	var request map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-pro:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&request)
		exercise := `{"type":"fill-in-the-blank","question":"Si yo ___ (tener) tiempo...","answer":"tuviera"}`
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": exercise}}}}},
		})
	})

	exercise, err := client.GenerateExercise(context.Background(), tutoring.LevelB2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exercise.Answer != "tuviera" || exercise.Type != "fill-in-the-blank" {
		t.Fatalf("unexpected exercise %+v", exercise)
	}

	config, _ := request["generationConfig"].(map[string]any)
	if config["responseMimeType"] != "application/json" {
		t.Fatalf("expected JSON response type, got %+v", config)
	}
	schema, _ := config["responseJsonSchema"].(map[string]any)
	properties, _ := schema["properties"].(map[string]any)
	for _, key := range []string{"type", "question", "answer"} {
		if _, ok := properties[key]; !ok {
			t.Fatalf("expected schema property %q, got %+v", key, schema)
		}
	}
}

func TestParseExerciseHandlesFencedJSON(t *testing.T) {
	exercise, err := parseExercise("```json\n{\"type\":\"conjugation\",\"question\":\"Conjuga ir\",\"answer\":\"fui\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exercise.Answer != "fui" {
		t.Fatalf("unexpected exercise %+v", exercise)
	}

	if _, err := parseExercise(`{"type":"conjugation","question":"","answer":"fui"}`); err == nil {
		t.Fatalf("expected incomplete exercise to be rejected")
	}
}

func TestGradeAnswerReturnsFeedback(t *testing.T) {
	var request genai.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&request)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"[CORRECT] ¡Qué bacano!"}]}}]}`)
	})

	exercise := tutoring.Exercise{Type: "conjugation", Question: "Conjuga ir", Answer: "fui"}
	feedback, err := client.GradeAnswer(context.Background(), exercise, tutoring.LevelB1, "fui")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feedback != "[CORRECT] ¡Qué bacano!" {
		t.Fatalf("unexpected feedback %q", feedback)
	}
	if len(request.Contents) != 1 || !strings.Contains(request.Contents[0].Parts[0].Text, "Conjuga ir") {
		t.Fatalf("expected grading prompt with the exercise, got %+v", request.Contents)
	}
}

func TestGradeAnswerRejectsEmptyFeedback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	if _, err := client.GradeAnswer(context.Background(), tutoring.Exercise{}, tutoring.LevelB1, "x"); err == nil {
		t.Fatalf("expected error for empty feedback")
	}
}
