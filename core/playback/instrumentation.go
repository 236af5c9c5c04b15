package playback

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/ema-tutor/core/playback"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)

	buffersScheduled, _ = meter.Int64Counter("playback.buffers_scheduled",
		metric.WithDescription("Speech buffers placed on the playback timeline"))
)
