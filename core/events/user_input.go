package events

const (
	KindUserTranscriptInterimUpdated Kind = "user_input.transcript_interim_updated"
	KindUserTranscriptFinal          Kind = "user_input.transcript_final"
)

type UserTranscriptInterimUpdated struct {
	Base
	Transcript string
}

func NewUserTranscriptInterimUpdated(transcript string) UserTranscriptInterimUpdated {
	return UserTranscriptInterimUpdated{Base: NewBase(KindUserTranscriptInterimUpdated), Transcript: transcript}
}

type UserTranscriptFinal struct {
	Base
	Transcript string
}

func NewUserTranscriptFinal(transcript string) UserTranscriptFinal {
	return UserTranscriptFinal{Base: NewBase(KindUserTranscriptFinal), Transcript: transcript}
}
