package events

const (
	KindAssistantSpeechScheduled Kind = "assistant_speech.scheduled"
	KindAssistantSpeechSkipped   Kind = "assistant_speech.skipped"
	KindAssistantPlaybackEnded   Kind = "assistant_speech.playback_ended"
)

// AssistantSpeechScheduled places Text on the output clock at Start seconds.
type AssistantSpeechScheduled struct {
	Base
	TurnID   string
	Text     string
	Start    float64
	Duration float64
}

func NewAssistantSpeechScheduled(turnID, text string, start, duration float64) AssistantSpeechScheduled {
	return AssistantSpeechScheduled{
		Base:     NewBase(KindAssistantSpeechScheduled),
		TurnID:   turnID,
		Text:     text,
		Start:    start,
		Duration: duration,
	}
}

// AssistantSpeechSkipped carries the synthesis error, if any. A nil Err means
// the synthesizer returned no audio.
type AssistantSpeechSkipped struct {
	Base
	TurnID string
	Text   string
	Err    error
}

func NewAssistantSpeechSkipped(turnID, text string, err error) AssistantSpeechSkipped {
	return AssistantSpeechSkipped{Base: NewBase(KindAssistantSpeechSkipped), TurnID: turnID, Text: text, Err: err}
}

type AssistantPlaybackEnded struct {
	Base
	Happy bool
}

func NewAssistantPlaybackEnded(happy bool) AssistantPlaybackEnded {
	return AssistantPlaybackEnded{Base: NewBase(KindAssistantPlaybackEnded), Happy: happy}
}
