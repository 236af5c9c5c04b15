package speechtotext

import (
	"context"

	"github.com/koscakluka/ema-tutor/core/audio"
)

type TranscriptionOptions struct {
	// InterimTranscriptionCallback receives the running transcript while the
	// user is still speaking.
	InterimTranscriptionCallback func(transcript string)
	// TranscriptionCallback receives the full transcript once the stream has
	// been stopped and every final result has arrived.
	TranscriptionCallback func(transcript string)
	// ErrorCallback is called when the stream ends abnormally.
	ErrorCallback func(error)

	SpeechStartedCallback func()

	EncodingInfo audio.EncodingInfo
}

type TranscriptionOption func(*TranscriptionOptions)

func WithInterimTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) { o.InterimTranscriptionCallback = callback }
}

func WithTranscriptionCallback(callback func(transcript string)) TranscriptionOption {
	return func(o *TranscriptionOptions) { o.TranscriptionCallback = callback }
}

func WithErrorCallback(callback func(error)) TranscriptionOption {
	return func(o *TranscriptionOptions) { o.ErrorCallback = callback }
}

func WithSpeechStartedCallback(callback func()) TranscriptionOption {
	return func(o *TranscriptionOptions) { o.SpeechStartedCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscriptionOption {
	return func(o *TranscriptionOptions) {
		if !encodingInfo.IsZero() {
			o.EncodingInfo = encodingInfo
		}
	}
}

// NewOptions applies opts over no-op callbacks and the capture encoding
// defaults.
func NewOptions(opts ...TranscriptionOption) TranscriptionOptions {
	options := TranscriptionOptions{
		InterimTranscriptionCallback: func(string) {},
		TranscriptionCallback:        func(string) {},
		ErrorCallback:                func(error) {},
		SpeechStartedCallback:        func() {},
		EncodingInfo:                 audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// Transcriber opens push-to-talk transcription streams.
type Transcriber interface {
	Transcribe(ctx context.Context, opts ...TranscriptionOption) (Stream, error)
}

// Stream accepts captured audio until it is stopped. The final transcript is
// delivered through the TranscriptionCallback after StopStream.
type Stream interface {
	SendAudio(audio []byte) error
	StopStream() error
}
