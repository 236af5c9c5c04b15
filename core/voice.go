package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-tutor/core/events"
	"github.com/koscakluka/ema-tutor/core/speechtotext"
	"github.com/koscakluka/ema-tutor/core/tutoring"
)

type voiceSession struct {
	cancel context.CancelFunc
	stream speechtotext.Stream
	// captureDone stops the hook that halts capture when the session context
	// ends.
	captureDone chan struct{}
}

// StartVoiceInput opens a transcription stream and starts capturing the
// microphone into it. The transcript is submitted when StopVoiceInput is
// called: as a chat message in chat mode, as the answer in practice mode.
func (t *Tutor) StartVoiceInput(ctx context.Context) error {
	if t.audioInput == nil || t.transcriber == nil {
		return ErrVoiceUnavailable
	}

	t.voiceMu.Lock()
	defer t.voiceMu.Unlock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrClosed
	}
	if t.voice != nil {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	ctx, span := tracer.Start(ctx, "start voice input")
	defer span.End()

	// The stream outlives this call; it ends when the final transcript
	// arrives or the tutor closes.
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	session := &voiceSession{cancel: cancel}

	stream, err := t.transcriber.Transcribe(ctx,
		speechtotext.WithEncodingInfo(t.audioInput.EncodingInfo()),
		speechtotext.WithInterimTranscriptionCallback(func(transcript string) {
			t.emitter.emit(events.NewUserTranscriptInterimUpdated(transcript))
		}),
		speechtotext.WithTranscriptionCallback(func(transcript string) {
			t.onVoiceTranscript(session, transcript)
		}),
		speechtotext.WithErrorCallback(func(err error) {
			t.onVoiceError(session, err)
		}),
	)
	if err != nil {
		cancel()
		err = fmt.Errorf("failed to open transcription stream: %w", err)
		span.RecordError(err)
		return err
	}
	session.stream = stream

	err = t.audioInput.StartCapture(ctx, func(audio []byte) {
		if err := stream.SendAudio(audio); err != nil {
			logger.Debug("failed to send captured audio", "error", err)
		}
	})
	if err != nil {
		cancel()
		err = errors.Join(fmt.Errorf("failed to start capture: %w", err), stream.StopStream())
		span.RecordError(err)
		return err
	}
	session.captureDone = withContextCancelHook(ctx, func() {
		if err := t.audioInput.StopCapture(); err != nil {
			logger.Debug("failed to stop capture", "error", err)
		}
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transcription stream ended early: %w", err)
	}
	t.voice = session
	return nil
}

// StopVoiceInput stops capturing and asks the transcription stream for its
// final transcript, which is then submitted asynchronously.
func (t *Tutor) StopVoiceInput() error {
	t.voiceMu.Lock()
	defer t.voiceMu.Unlock()

	t.mu.Lock()
	session := t.voice
	t.voice = nil
	closed := t.closed
	t.mu.Unlock()

	if session == nil {
		return nil
	}

	close(session.captureDone)
	err := errors.Join(t.audioInput.StopCapture(), session.stream.StopStream())
	if closed {
		session.cancel()
	}
	return err
}

func (t *Tutor) onVoiceTranscript(session *voiceSession, transcript string) {
	session.cancel()

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}
	t.emitter.emit(events.NewUserTranscriptFinal(transcript))

	t.mu.Lock()
	if err := t.registerLocked(); err != nil {
		t.mu.Unlock()
		return
	}
	mode := t.mode
	t.mu.Unlock()

	go func() {
		defer t.tasks.Done()

		var err error
		if mode == tutoring.ModePractice {
			err = t.CheckAnswer(context.Background(), transcript)
		} else {
			err = t.SendMessage(context.Background(), transcript)
		}
		if err != nil {
			logger.Warn("failed to submit voice transcript", "mode", mode, "error", err)
		}
	}()
}

func (t *Tutor) onVoiceError(session *voiceSession, err error) {
	session.cancel()
	logger.Error("voice input failed", "error", err)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.voice == session {
		t.voice = nil
	}
	if !t.closed {
		t.raiseErrorLocked(VoiceErrorMessage, err)
	}
}
