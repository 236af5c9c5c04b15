package events

import "github.com/koscakluka/ema-tutor/core/llms"

const KindTranscriptUpdated Kind = "transcript.updated"

type TranscriptUpdated struct {
	Base
	Messages []llms.Message
}

func NewTranscriptUpdated(messages []llms.Message) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated), Messages: messages}
}
