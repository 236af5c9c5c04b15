package gemini

import (
	"context"
	"fmt"

	"github.com/koscakluka/ema-tutor/core/tutoring"
	"github.com/koscakluka/ema-tutor/internal/genai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GradeAnswer returns free-text feedback on answer. Feedback for a correct
// answer starts with tutoring.CorrectMarker.
func (c *Client) GradeAnswer(ctx context.Context, exercise tutoring.Exercise, level tutoring.Level, answer string) (string, error) {
	ctx, span := tracer.Start(ctx, "grade answer")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", c.gradingModel),
		attribute.String("tutor.level", string(level)),
	)

	response, err := genai.Generate(ctx, c.httpClient, c.baseURL, c.apiKey, c.gradingModel, genai.Request{
		Contents: []genai.Content{genai.TextContent("user", tutoring.GradingPrompt(exercise, level, answer))},
	})
	if err != nil {
		err = fmt.Errorf("failed to grade answer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	feedback := response.Text()
	if feedback == "" {
		err := fmt.Errorf("grading returned no feedback")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return feedback, nil
}
