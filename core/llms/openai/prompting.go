package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Prompt sends a single non-streamed prompt and returns the reply text.
func (c *Client) Prompt(ctx context.Context, prompt string, opts ...llms.GeneralPromptOption) (string, error) {
	options := llms.GeneralPromptOptions{}
	for _, opt := range opts {
		opt.ApplyToGeneral(&options)
	}

	messages := toOpenAIMessages(options.Instructions, options.Messages)
	messages = append(messages, openAIMessage{Type: messageTypeMessage, Role: messageRoleUser, Content: prompt})

	return c.respond(ctx, requestBody{Model: c.model, Input: messages})
}

// GenerateExercise asks for a practice exercise using strict structured
// output.
func (c *Client) GenerateExercise(ctx context.Context, level tutoring.Level) (tutoring.Exercise, error) {
	ctx, span := tracer.Start(ctx, "generate exercise")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model), attribute.String("tutor.level", string(level)))

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(tutoring.Exercise{})
	schema.Version = ""
	schema.ID = ""

	text, err := c.respond(ctx, requestBody{
		Model: c.model,
		Input: []openAIMessage{{Type: messageTypeMessage, Role: messageRoleUser, Content: tutoring.ExercisePrompt(level)}},
		Text: &requestText{Format: requestTextFormat{
			Type:   "json_schema",
			Name:   "Exercise",
			Schema: schema,
			Strict: true,
		}},
	})
	if err != nil {
		err = fmt.Errorf("failed to generate exercise: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tutoring.Exercise{}, err
	}

	var exercise tutoring.Exercise
	if err := json.Unmarshal([]byte(text), &exercise); err != nil {
		err = fmt.Errorf("error unmarshalling exercise: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tutoring.Exercise{}, err
	}
	if err := exercise.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tutoring.Exercise{}, err
	}
	return exercise, nil
}

func (c *Client) GradeAnswer(ctx context.Context, exercise tutoring.Exercise, level tutoring.Level, answer string) (string, error) {
	ctx, span := tracer.Start(ctx, "grade answer")
	defer span.End()

	feedback, err := c.Prompt(ctx, tutoring.GradingPrompt(exercise, level, answer))
	if err != nil {
		err = fmt.Errorf("failed to grade answer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return feedback, nil
}

func (c *Client) respond(ctx context.Context, body requestBody) (string, error) {
	resp, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var responseBody generalResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}

	var text strings.Builder
	for _, output := range responseBody.Output {
		if output.Type != "message" {
			continue
		}
		for _, content := range output.Content {
			switch content.Type {
			case "output_text":
				text.WriteString(content.Text)
			case "refusal":
				return "", fmt.Errorf("model refused: %s", content.Refusal)
			}
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("response contained no text output")
	}
	return text.String(), nil
}

type generalResponseBody struct {
	Output []generalResponseBodyOutput `json:"output"`
	Usage  *responseBodyUsage          `json:"usage"`
}

type generalResponseBodyOutput struct {
	// Type is the type of the output item, 'message' for text replies.
	Type    string `json:"type"`
	Content []struct {
		// Type is 'output_text' or 'refusal'.
		Type    string `json:"type"`
		Text    string `json:"text"`
		Refusal string `json:"refusal"`
	} `json:"content,omitempty"`
}
