package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"github.com/koscakluka/ema-tutor/internal/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var exerciseSchema = (&jsonschema.Reflector{DoNotReference: true}).Reflect(tutoring.Exercise{})

// GenerateExercise asks for a single practice exercise for level, constrained
// to the exercise JSON schema.
func (c *Client) GenerateExercise(ctx context.Context, level tutoring.Level) (tutoring.Exercise, error) {
	ctx, span := tracer.Start(ctx, "generate exercise")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.exerciseModel),
		attribute.String("tutor.level", string(level)),
	)

	response, err := genai.Generate(ctx, c.httpClient, c.baseURL, c.apiKey, c.exerciseModel, genai.Request{
		Contents: []genai.Content{genai.TextContent("user", tutoring.ExercisePrompt(level))},
		GenerationConfig: &genai.GenerationConfig{
			ResponseMimeType:   "application/json",
			ResponseJSONSchema: exerciseSchema,
		},
	})
	if err != nil {
		err = fmt.Errorf("failed to generate exercise: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tutoring.Exercise{}, err
	}

	exercise, err := parseExercise(response.Text())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tutoring.Exercise{}, err
	}
	span.SetAttributes(attribute.String("exercise.type", exercise.Type))
	return exercise, nil
}

func parseExercise(text string) (tutoring.Exercise, error) {
	text = strings.TrimSpace(text)
	if split := strings.Split(text, "```"); len(split) > 1 {
		text = strings.TrimPrefix(strings.TrimSpace(split[1]), "json")
	}

	var exercise tutoring.Exercise
	if err := json.Unmarshal([]byte(text), &exercise); err != nil {
		return tutoring.Exercise{}, fmt.Errorf("error unmarshalling exercise: %w", err)
	}
	if err := exercise.Validate(); err != nil {
		return tutoring.Exercise{}, err
	}
	return exercise, nil
}
