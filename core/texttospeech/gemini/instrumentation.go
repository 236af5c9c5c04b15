package gemini

import "go.opentelemetry.io/otel"

const scopeName = "github.com/koscakluka/ema-tutor/core/texttospeech/gemini"

var tracer = otel.Tracer(scopeName)
