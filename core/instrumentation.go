package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-tutor/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	turnDuration, _ = meter.Float64Histogram("tutor.turn.duration",
		metric.WithDescription("Time from sending a message until every sentence settled"),
		metric.WithUnit("s"))
	sentencesDispatched, _ = meter.Int64Counter("tutor.sentences.dispatched",
		metric.WithDescription("Reply sentences handed to speech synthesis"))
	synthesisFailures, _ = meter.Int64Counter("tutor.synthesis.failures",
		metric.WithDescription("Sentences dropped because synthesis produced no audio"))
)
