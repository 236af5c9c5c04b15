package orchestration

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-tutor/core/llms"
	"github.com/koscakluka/ema-tutor/core/sentences"
	"github.com/koscakluka/ema-tutor/core/tutoring"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NewConversation clears the transcript and streams the tutor's greeting for
// the hidden opening prompt. The greeting is shown but not voiced.
func (t *Tutor) NewConversation(ctx context.Context) error {
	if t.chat == nil {
		return ErrChatUnavailable
	}

	ctx, span := tracer.Start(ctx, "new conversation")
	defer span.End()

	t.mu.Lock()
	if err := t.registerLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	defer t.tasks.Done()

	tn := t.beginTurnLocked(ctx, turnGreeting)
	t.transcript.reset()
	replyID := t.transcript.append(llms.MessageRoleModel, "")
	t.clearErrorLocked()
	t.emitTranscriptLocked()
	level := t.level
	t.mu.Unlock()

	span.SetAttributes(
		attribute.String("turn.id", tn.id),
		attribute.String("tutor.level", string(level)),
	)

	prompt := tutoring.GreetingPrompt
	stream := t.chat.PromptWithStream(tn.ctx, &prompt, llms.WithInstructions(tutoring.SystemInstruction(level)))
	if err := t.streamReply(tn, replyID, stream, false); err != nil {
		err = fmt.Errorf("failed to stream greeting: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		t.mu.Lock()
		defer t.mu.Unlock()
		if !t.isCurrentLocked(tn) {
			return nil
		}
		t.transcript.reset()
		t.emitTranscriptLocked()
		t.abortTurnLocked(tn, err)
		t.raiseErrorLocked(GreetingErrorMessage, err)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isCurrentLocked(tn) {
		return nil
	}
	t.transcript.greeted = true
	t.resolveTurnLocked(tn)
	return nil
}

// SendMessage runs one chat turn and blocks until it is resolved: the reply
// has streamed into the transcript and every sentence was either scheduled
// for playback or dropped. Audio may still be playing when it returns.
//
// A turn superseded by a newer one returns nil; its partial reply stays in
// the transcript.
func (t *Tutor) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if t.chat == nil {
		return ErrChatUnavailable
	}

	ctx, span := tracer.Start(ctx, "send message")
	defer span.End()

	t.mu.Lock()
	if err := t.registerLocked(); err != nil {
		t.mu.Unlock()
		return err
	}
	defer t.tasks.Done()

	tn := t.beginTurnLocked(ctx, turnChat)
	t.transcript.append(llms.MessageRoleUser, text)
	replyID := t.transcript.append(llms.MessageRoleModel, "")
	history := t.transcript.history(replyID)
	level := t.level
	t.clearErrorLocked()
	t.emitTranscriptLocked()
	t.mu.Unlock()

	span.SetAttributes(
		attribute.String("turn.id", tn.id),
		attribute.Int("turn.history_length", len(history)),
	)

	stream := t.chat.PromptWithStream(tn.ctx, nil,
		llms.WithInstructions(tutoring.SystemInstruction(level)),
		llms.WithMessages(history...),
	)
	if err := t.streamReply(tn, replyID, stream, t.voiced()); err != nil {
		err = fmt.Errorf("failed to stream reply: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		t.mu.Lock()
		current := t.isCurrentLocked(tn)
		if current {
			t.abortTurnLocked(tn, err)
			t.transcript.overwrite(replyID, ChatErrorMessage)
			t.emitTranscriptLocked()
		}
		t.mu.Unlock()

		// Aborting cancelled the sentences still in flight.
		_ = tn.group.Wait()
		if !current {
			return nil
		}
		return err
	}

	if err := tn.group.Wait(); err != nil {
		span.RecordError(err)
		logger.Warn("speech tasks failed", "turn", tn.id, "error", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isCurrentLocked(tn) {
		return nil
	}
	span.SetAttributes(
		attribute.Int("turn.dispatched", tn.dispatched),
		attribute.Int("turn.scheduled", tn.scheduled),
	)
	t.resolveTurnLocked(tn)
	return nil
}

// streamReply appends the stream's text to the reply and, when voiced,
// dispatches every completed sentence plus the trailing fragment. It returns
// the stream's error; a superseded turn stops quietly.
func (t *Tutor) streamReply(tn *turn, replyID string, stream llms.Stream, voiced bool) error {
	if !voiced && tn.kind == turnChat {
		t.warnAudioUnavailable()
	}

	fragment := ""
	for chunk, err := range stream.Chunks(tn.ctx) {
		if err != nil {
			return err
		}

		content, ok := chunk.(llms.StreamContentChunk)
		if !ok || content.Content() == "" {
			continue
		}
		if !t.appendReply(tn, replyID, content.Content()) {
			return nil
		}
		if !voiced {
			continue
		}

		var complete []string
		complete, fragment = sentences.Feed(fragment, content.Content())
		for _, sentence := range complete {
			t.dispatch(tn, sentence)
		}
	}
	if voiced && !sentences.IsBlank(fragment) {
		t.dispatch(tn, fragment)
	}
	return nil
}

func (t *Tutor) appendReply(tn *turn, replyID, chunk string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isCurrentLocked(tn) {
		return false
	}
	t.transcript.appendTo(replyID, chunk)
	t.emitTranscriptLocked()
	return true
}
