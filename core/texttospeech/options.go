package texttospeech

import (
	"context"

	"github.com/koscakluka/ema-tutor/core/audio"
)

// Synthesizer turns a piece of text into raw little-endian signed 16-bit mono
// PCM at [audio.SpeechSampleRate]. A nil slice with a nil error means the
// request produced nothing usable.
//
// Synthesize may be called concurrently.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type TextToSpeechOptions struct {
	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}

// NewOptions applies opts over the speech encoding defaults.
func NewOptions(opts ...TextToSpeechOption) TextToSpeechOptions {
	options := TextToSpeechOptions{EncodingInfo: audio.GetSpeechEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
